/*
Package tracker contains the sequencing engine and the data model of the
sequencer editors.

The Player is the engine. It is driven by the audio goroutine (or the plugin
host) through Process, which turns the advancing sample clock into MIDI note
events following the pattern. All its setters are safe to call from other
goroutines.

The Model holds everything an editor needs on top of the Player: undo history,
file paths, dialogs, alerts and the MIDI output selection. The editors do not
modify the Player directly, rather, there are types Action, Bool, Int and
String which manipulate the state in a controlled way. For example,
model.Randomize() returns an Action to generate a new pattern, which can be
executed with model.Randomize().Do(), and model.Rate() returns an Int that a
slider can edit.

The Dispatcher runs in its own goroutine and sends the events produced by the
Player to the MIDI output, each at the time it is heard. The goroutines talk
through the channels of the Broker.
*/
package tracker
