package domain

type Owner struct {
	ID    string
	Guest bool
}

type Profile struct {
	OwnerID string
	Name    string
	Email   string
	Phone   string
	Address string
}

// Remembered holds overrides the user picked earlier. Empty fields are unset.
type Remembered struct {
	StoreID string
	Address string
	Phone   string
}
