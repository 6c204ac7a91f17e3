package notify

import (
	"context"
	"fmt"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"

	"github.com/sirupsen/logrus"
)

// Notifier renders order-lifecycle notifications and hands them to the
// configured senders. Send failures are logged and swallowed: a missed
// notification must never fail the transition that triggered it.
type Notifier struct {
	senders map[string]Sender
	log     *logrus.Entry
}

func NewNotifier(senders map[string]Sender) *Notifier {
	return &Notifier{senders: senders, log: logrus.WithField("component", "notifier")}
}

func (n *Notifier) dispatch(ctx context.Context, msgs ...Message) {
	for _, msg := range msgs {
		sender, ok := n.senders[msg.Channel]
		if !ok || msg.Recipient == "" {
			continue
		}
		if err := sender.Send(ctx, msg); err != nil {
			n.log.WithError(err).WithFields(logrus.Fields{
				"channel":   msg.Channel,
				"recipient": msg.Recipient,
			}).Warn("notification send failed")
		}
	}
}

func (n *Notifier) OrderPlaced(ctx context.Context, o *models.Order) {
	subject := fmt.Sprintf("Order %s placed", o.OrderNo)
	body := fmt.Sprintf("Hi %s, we have received your order %s for ₹%.2f. We will let you know when it ships.",
		o.CustomerName, o.OrderNo, o.Total)
	n.dispatch(ctx,
		Message{Channel: ChannelEmail, Recipient: o.CustomerEmail, Subject: subject, Body: body},
		Message{Channel: ChannelSMS, Recipient: o.ShipPhone, Body: fmt.Sprintf("Order %s placed. Total ₹%.2f. Thank you for shopping with us!", o.OrderNo, o.Total)},
	)
}

func (n *Notifier) OrderProcessing(ctx context.Context, o *models.Order) {
	subject := fmt.Sprintf("Order %s confirmed", o.OrderNo)
	body := fmt.Sprintf("Hi %s, your order %s is confirmed and being prepared for dispatch.", o.CustomerName, o.OrderNo)
	n.dispatch(ctx, Message{Channel: ChannelEmail, Recipient: o.CustomerEmail, Subject: subject, Body: body})
}

func (n *Notifier) OrderShipped(ctx context.Context, o *models.Order, carrier, tracking string) {
	subject := fmt.Sprintf("Order %s shipped", o.OrderNo)
	body := fmt.Sprintf("Hi %s, your order %s has shipped via %s. Tracking number: %s.",
		o.CustomerName, o.OrderNo, carrier, tracking)
	n.dispatch(ctx,
		Message{Channel: ChannelEmail, Recipient: o.CustomerEmail, Subject: subject, Body: body},
		Message{Channel: ChannelSMS, Recipient: o.ShipPhone, Body: fmt.Sprintf("Order %s shipped via %s. Track: %s", o.OrderNo, carrier, tracking)},
	)
}

func (n *Notifier) OrderDelivered(ctx context.Context, o *models.Order) {
	subject := fmt.Sprintf("Order %s delivered", o.OrderNo)
	body := fmt.Sprintf("Hi %s, your order %s has been delivered. We would love to hear what you think of your handloom pieces!",
		o.CustomerName, o.OrderNo)
	n.dispatch(ctx, Message{Channel: ChannelEmail, Recipient: o.CustomerEmail, Subject: subject, Body: body})
}

func (n *Notifier) ReturnApproved(ctx context.Context, r *models.ReturnRequest) {
	subject := fmt.Sprintf("Return %s approved", r.ReturnNo)
	body := fmt.Sprintf("Hi %s, your return request %s has been approved. Refund of ₹%.2f will follow once the pickup completes.",
		r.CustomerName, r.ReturnNo, r.Amount)
	n.dispatch(ctx, Message{Channel: ChannelEmail, Recipient: r.CustomerEmail, Subject: subject, Body: body})
}

func (n *Notifier) RefundProcessed(ctx context.Context, r *models.ReturnRequest) {
	subject := fmt.Sprintf("Refund for return %s processed", r.ReturnNo)
	body := fmt.Sprintf("Hi %s, your refund of ₹%.2f has been processed (reference %s). It should reflect in 5-7 business days.",
		r.CustomerName, r.Amount, r.RefundID)
	n.dispatch(ctx, Message{Channel: ChannelEmail, Recipient: r.CustomerEmail, Subject: subject, Body: body})
}
