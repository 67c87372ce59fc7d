// internal/atem/observer.go
package atem

// Observer receives client traffic and decode events.
// Implementations must not block; the data path calls them inline.
type Observer interface {
	DatagramReceived(bytes int)
	ReceiveFailed()
	TagDecoded(tag string)
	DecodeFailed(tag string)
	Sent(bytes int)
	SendFailed()
}

// noopObserver is the default when no observer is supplied.
type noopObserver struct{}

func (noopObserver) DatagramReceived(int) {}
func (noopObserver) ReceiveFailed()       {}
func (noopObserver) TagDecoded(string)    {}
func (noopObserver) DecodeFailed(string)  {}
func (noopObserver) Sent(int)             {}
func (noopObserver) SendFailed()          {}
