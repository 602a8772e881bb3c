package prompt

import (
	"fmt"
	"sort"
	"strings"

	"customer-service-be/pkg/workflow/state"
)

const systemPrompt = `You are a helpful customer service AI assistant. You have access to:
- Customer conversation history
- Sentiment analysis of their message
- Order, order history and customer records looked up for this request
- Any actions that have been taken (payments, cancellations, refunds)

Provide helpful, empathetic and accurate responses. If payment actions were taken, confirm the details.
If a record was not found, say so plainly. Never reveal data belonging to a different customer.
Always maintain a professional and friendly tone.`

// System returns the reply generator's system prompt
func System() string {
	return systemPrompt
}

// Builder renders the current request and the Action stage results as the final user message
type Builder struct {
	st *state.InteractionState
}

func NewBuilder(st *state.InteractionState) *Builder {
	return &Builder{st: st}
}

func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writeMessage(&prompt)
	b.writeSentiment(&prompt)
	b.writeActions(&prompt)
	b.writeOrder(&prompt)
	b.writeOrderHistory(&prompt)
	b.writeCustomer(&prompt)
	b.writeAccessDenial(&prompt)

	return prompt.String()
}

func (b *Builder) writeMessage(prompt *strings.Builder) {
	prompt.WriteString("<user_message>\n")
	prompt.WriteString(b.st.Message)
	prompt.WriteString("\n</user_message>\n\n")
}

func (b *Builder) writeSentiment(prompt *strings.Builder) {
	if len(b.st.Sentiment) == 0 {
		return
	}
	labels := make([]string, 0, len(b.st.Sentiment))
	for label := range b.st.Sentiment {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	prompt.WriteString("<sentiment>\n")
	for _, label := range labels {
		fmt.Fprintf(prompt, "%s: %.3f\n", label, b.st.Sentiment[label])
	}
	prompt.WriteString("</sentiment>\n\n")
}

func (b *Builder) writeActions(prompt *strings.Builder) {
	prompt.WriteString("<actions_taken>\n")
	if len(b.st.ActionsTaken) == 0 {
		prompt.WriteString("none\n")
	}
	for _, a := range b.st.ActionsTaken {
		prompt.WriteString("- " + a + "\n")
	}
	prompt.WriteString("</actions_taken>\n\n")
}

func (b *Builder) writeOrder(prompt *strings.Builder) {
	switch {
	case b.st.OrderLookupError != "":
		prompt.WriteString("<order_lookup>\nThe order lookup failed: " + b.st.OrderLookupError + "\n</order_lookup>\n\n")
	case b.st.OrderData == nil, b.st.OrderData.Success && b.st.OrderData.Order == nil:
		return
	case !b.st.OrderData.Success:
		fmt.Fprintf(prompt, "<order_lookup>\nNOT FOUND: %s\n</order_lookup>\n\n", b.st.OrderData.Error)
	default:
		o := b.st.OrderData.Order
		prompt.WriteString("<order_lookup>\n")
		fmt.Fprintf(prompt, "Order #%s\nStatus: %s\nPayment status: %s\nTotal: %.2f\nPlaced: %s\n",
			o.OrderNumber, o.Status, o.PaymentStatus, o.TotalAmount, o.CreatedAt)
		if o.Shipment != nil {
			fmt.Fprintf(prompt, "Shipment: %s via %s, tracking %s\n", o.Shipment.Status, o.Shipment.Carrier, o.Shipment.TrackingNumber)
			if o.Shipment.EstimatedDelivery != nil {
				fmt.Fprintf(prompt, "Estimated delivery: %s\n", *o.Shipment.EstimatedDelivery)
			}
		}
		for _, item := range o.Items {
			fmt.Fprintf(prompt, "- %d x %s (%.2f)\n", item.Quantity, item.Name, item.TotalPrice)
		}
		prompt.WriteString("</order_lookup>\n\n")
	}
}

func (b *Builder) writeOrderHistory(prompt *strings.Builder) {
	switch {
	case b.st.OrderHistoryError != "":
		prompt.WriteString("<order_history>\nThe order history lookup failed: " + b.st.OrderHistoryError + "\n</order_history>\n\n")
	case b.st.CustomerOrderHistory == nil:
		return
	case !b.st.CustomerOrderHistory.Success:
		fmt.Fprintf(prompt, "<order_history>\nNOT FOUND: %s\n</order_history>\n\n", b.st.CustomerOrderHistory.Error)
	default:
		h := b.st.CustomerOrderHistory
		fmt.Fprintf(prompt, "<order_history>\n%d orders for %s\n", h.TotalOrders, h.CustomerEmail)
		for _, o := range h.Orders {
			fmt.Fprintf(prompt, "- #%s %s %.2f (%s)\n", o.OrderNumber, o.Status, o.TotalAmount, o.CreatedAt)
		}
		prompt.WriteString("</order_history>\n\n")
	}
}

func (b *Builder) writeCustomer(prompt *strings.Builder) {
	c := b.st.CustomerData
	if c == nil || (c.Success && c.Customer == nil) {
		return
	}
	if !c.Success {
		fmt.Fprintf(prompt, "<customer>\nNOT FOUND: %s\n</customer>\n\n", c.Error)
		return
	}
	fmt.Fprintf(prompt, "<customer>\nName: %s %s\nEmail: %s\nStatus: %s\nCustomer since: %s\n</customer>\n\n",
		c.Customer.FirstName, c.Customer.LastName, c.Customer.Email, c.Customer.Status, c.Customer.CreatedAt)
}

func (b *Builder) writeAccessDenial(prompt *strings.Builder) {
	ua := b.st.UnauthorizedAccessAttempt
	if ua == nil {
		return
	}
	prompt.WriteString("<access_denied>\n")
	fmt.Fprintf(prompt, "The caller asked for the order history of %s. %s.\n", ua.RequestedIdentifier, ua.Reason)
	prompt.WriteString("Explain that you can only share order information with the account owner or an authorized agent.\n")
	prompt.WriteString("</access_denied>\n\n")
}
