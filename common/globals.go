package common

const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusExpired   = "expired"
	InvoiceStatusCancelled = "cancelled"

	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"

	TransactionDirectionIncoming = "incoming"
	TransactionDirectionOutgoing = "outgoing"

	ChannelKindInvoices = "invoices"
	ChannelKindPayments = "payments"
	ChannelKindBalances = "balances"

	UpdateTypeInvoice = "invoice_update"
	UpdateTypePayment = "payment_update"
	UpdateTypeAssets  = "assets_update"

	PayStatusSuccess = "success"
	PayStatusFailed  = "failed"

	AssetTypeNormal      = "NORMAL"
	AssetTypeCollectible = "COLLECTIBLE"
	AssetTypeChannelOnly = "CHANNEL_ONLY"
)

// Error detail fragments the backend emits when a payment request turns out
// to be destined to another account on the same host. A pay attempt that
// fails with one of these is retried through the internal payment path.
var InternalPaymentMarkers = []string{
	"internal payment",
	"pay your own invoice",
	"self-payment",
	"belongs to a user on this node",
}
