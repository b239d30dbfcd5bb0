package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

const defaultSendTimeout = 30 * time.Second

// AsyncDispatcher renders and sends each event on its own goroutine.
// Failures are logged and dropped.
type AsyncDispatcher struct {
	transport Transport
	renderer  *Renderer
	recipient string
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewAsyncDispatcher(t Transport, r *Renderer, recipient string) *AsyncDispatcher {
	return &AsyncDispatcher{transport: t, renderer: r, recipient: recipient, timeout: defaultSendTimeout}
}

func (d *AsyncDispatcher) Notify(ev StockOutEvent) {
	if len(ev.Lines) == 0 {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("notify: panic while sending stock-out mail: %v", r)
			}
		}()
		d.send(ev)
	}()
}

func (d *AsyncDispatcher) send(ev StockOutEvent) {
	msg, err := d.renderer.StockOut(ev)
	if err != nil {
		log.Printf("notify: render stock-out mail: %v", err)
		return
	}
	msg.To = d.recipient

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	sent, err := d.transport.Send(ctx, msg)
	switch {
	case err != nil:
		log.Printf("notify: send %q failed: %v", msg.Subject, err)
	case !sent:
		log.Printf("notify: %q not sent (mail not configured)", msg.Subject)
	default:
		log.Printf("notify: sent %q", msg.Subject)
	}
}

// Wait blocks until every in-flight send has finished.
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}

// Discard drops every event. Used when notifications are switched off.
type Discard struct{}

func (Discard) Notify(StockOutEvent) {}
