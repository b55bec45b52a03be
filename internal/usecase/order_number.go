package usecase

import "github.com/jaevor/go-nanoid"

const orderNumberAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// newOrderNumber synthesizes the unique order number assigned on SUCCESS.
// Human-readable formatting of it is left to the presentation edges.
func newOrderNumber() (string, error) {
	generate, err := nanoid.CustomASCII(orderNumberAlphabet, 14)
	if err != nil {
		return "", err
	}
	return "CD-" + generate(), nil
}
