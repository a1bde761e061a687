package types

// OwnerType discriminates the two identity kinds that can hold a credit
// balance or a subscription.
type OwnerType string

const (
	OwnerTypeUser    OwnerType = "user"
	OwnerTypeCompany OwnerType = "company"
)

func (t OwnerType) Valid() bool {
	return t == OwnerTypeUser || t == OwnerTypeCompany
}

// OwnerRef identifies the exclusive holder of a balance or subscription.
type OwnerRef struct {
	ID   string    `json:"owner_id"`
	Type OwnerType `json:"owner_type"`
}
