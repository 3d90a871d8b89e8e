package booking

// Action is the single user action currently valid for a booking. The
// presentation layer only reads it; it never re-derives state from status
// strings.
type Action string

const (
	ActionPayFull      Action = "pay_full"
	ActionPayRemaining Action = "pay_remaining"
	ActionContactAdmin Action = "contact_admin"
	ActionTicket       Action = "ticket"
	ActionNone         Action = "none"
)

// NextAction derives the valid action from the booking's state. A partially
// paid booking that is not cancelled always asks for the remainder, even
// while a later proof is under review; that precedence matches the customer
// dashboard behavior.
func (b *Booking) NextAction() Action {
	if b.paymentStatus == PaymentPartial && b.status != StatusCancelled {
		return ActionPayRemaining
	}
	switch b.status {
	case StatusWaitingVerification:
		return ActionContactAdmin
	case StatusPendingPayment:
		return ActionPayFull
	case StatusConfirmed:
		return ActionTicket
	default:
		return ActionNone
	}
}
