package cart

// ChangeKind names the mutation that produced a snapshot
type ChangeKind string

const (
	ChangeItemAdded        ChangeKind = "ItemAdded"
	ChangeItemRemoved      ChangeKind = "ItemRemoved"
	ChangeQuantityUpdated  ChangeKind = "QuantityUpdated"
	ChangeAttributeUpdated ChangeKind = "AttributeUpdated"
	ChangeCleared          ChangeKind = "CartCleared"
	ChangePanel            ChangeKind = "PanelChanged"
)

// Change describes the mutation behind a published snapshot.
// ProductID is empty for cart-wide changes.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	ProductID string     `json:"product_id,omitempty"`
}
