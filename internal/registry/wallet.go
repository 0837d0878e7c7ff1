package registry

import "nbxwatch/internal/pkg/validator"

// UnknownWalletName labels activity on descriptors no configured wallet
// claims. Unknown wallets still get notified: a misconfiguration must not
// suppress evidence of an unexpected transaction.
const UnknownWalletName = "UNKNOWN WALLET"

// Wallet is one configured wallet to watch. Exactly one of XPub and
// Derivation should be set; a wallet with neither is skipped.
type Wallet struct {
	ID   string
	Name string `validate:"required"`

	// XPub is a single-sig extended public key we register ourselves.
	XPub string

	// Derivation is a descriptor managed by another system (e.g. a payment
	// processor) and assumed to be registered already.
	Derivation string
}

// Descriptor returns the string the tracking service knows this wallet by,
// preferring the managed derivation.
func (w Wallet) Descriptor() string {
	if w.Derivation != "" {
		return w.Derivation
	}
	return w.XPub
}

// IsManaged reports whether the wallet's derivation is owned by another
// system, in which case it is never registered here.
func (w Wallet) IsManaged() bool {
	return w.Derivation != ""
}

func (w Wallet) validate() error {
	return validator.Validate(w)
}

// DerivationBook maps descriptor strings to display names. It is built once
// after registration and read-only during the watch loop.
type DerivationBook map[string]string

// NameFor resolves a descriptor to its display name, falling back to
// UnknownWalletName.
func (b DerivationBook) NameFor(derivation string) string {
	if name, ok := b[derivation]; ok {
		return name
	}
	return UnknownWalletName
}
