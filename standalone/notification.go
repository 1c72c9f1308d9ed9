package standalone

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const notificationDuration = 3 * time.Second

// Notification shows a short message in the bottom-left corner for a few
// seconds.
type Notification struct {
	message string
	until   time.Time
	now     func() time.Time
}

// NewNotification creates an empty notification.
func NewNotification() *Notification {
	return &Notification{now: time.Now}
}

// Show replaces the current message.
func (n *Notification) Show(message string) {
	n.message = message
	n.until = n.now().Add(notificationDuration)
}

// Message returns the message while it is still visible.
func (n *Notification) Message() (string, bool) {
	if n.message == "" || !n.now().Before(n.until) {
		return "", false
	}
	return n.message, true
}

// Draw renders the active message, if any.
func (n *Notification) Draw(screen *ebiten.Image) {
	msg, ok := n.Message()
	if !ok {
		return
	}
	ebitenutil.DebugPrintAt(screen, msg, 8, screen.Bounds().Dy()-24)
}
