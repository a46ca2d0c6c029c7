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

// Event names the change notification emitted by the dispatch layer
// (§6). Only the trigger points are implemented here; the transport
// itself (a watcher, a pub/sub bus) is an external collaborator per the
// Out of scope list in §1.
type Event string

const (
	EventRename Event = "rename" // creation, deletion, or renaming of a path.
	EventChange Event = "change" // content modification of a path.
)

// Notifier receives change notifications emitted after a backend mutation
// succeeds and before the dispatch function returns (§5's ordering
// guarantee).
type Notifier interface {
	Emit(event Event, path string)
}

// NopNotifier discards every event. It is the default Notifier, matching
// the "transport is out of scope" boundary in §1.
type NopNotifier struct{}

func (NopNotifier) Emit(Event, string) {}

// ChanNotifier publishes events on a buffered channel. It exists so
// tests can observe emission order (§5, §8 scenario 4); production
// transports are an external collaborator.
type ChanNotifier struct {
	C chan Notification
}

// Notification is one event delivered by ChanNotifier.
type Notification struct {
	Event Event
	Path  string
}

// NewChanNotifier returns a ChanNotifier buffered to hold size pending
// notifications before Emit starts blocking.
func NewChanNotifier(size int) *ChanNotifier {
	return &ChanNotifier{C: make(chan Notification, size)}
}

func (n *ChanNotifier) Emit(event Event, path string) {
	n.C <- Notification{Event: event, Path: path}
}
