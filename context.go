//
//  Copyright 2024 The zenfs-core authors
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//  	http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package zenfs

// Context is V_Context from §9: the `this`-bound state of the source
// translated into an explicit first argument, the way the teacher turns
// its CurUserFn/UserReader pair into plain fields. Callers always pass it.
type Context struct {
	Root string
	UID  int
	GID  int
}

// RootContext is the default context used when a caller has no specific
// identity: root uid/gid, root path. Mirrors the teacher's AdminUser
// bypass (curuser.go) used whenever no current user has been set.
var RootContext = Context{Root: "/", UID: 0, GID: 0}
