// Package notify turns classified wallet activity into a human-readable
// email and hands it to the mail transport, optionally encrypting the body
// first. Composition is pure; everything with side effects lives behind the
// Encrypter and Mailer interfaces.
package notify

import (
	"fmt"
	"strings"
	"time"

	"nbxwatch/internal/txwatch"
)

const (
	satsPerBTC = 100_000_000

	separator = "----------------------------------"

	dateLayout = "02/Jan/06 15:04:05"

	// firstSeenNote is attached to the first notification ever emitted for
	// a wallet: the Original/Balance figures are derived, not observed, so
	// history from before watching started may be missing from them.
	firstSeenNote = "Note: This is the first transaction observed for this wallet by nbxwatch; " +
		"earlier history may not be fully reflected in the Original/Balance values."
)

// Composer renders notification subjects and bodies. It is immutable and
// safe for concurrent use.
type Composer struct {
	localExplorerURL  string
	publicExplorerURL string
	tzOffset          time.Duration
	tzLabel           string
}

// NewComposer builds a composer. Explorer URLs may be empty (their link line
// is omitted); the timezone offset is a fixed hour shift from UTC with no
// DST handling, labeled tzLabel ("Local" when empty).
func NewComposer(localExplorerURL, publicExplorerURL string, tzOffsetHours float64, tzLabel string) Composer {
	if tzLabel == "" {
		tzLabel = "Local"
	}

	return Composer{
		localExplorerURL:  strings.TrimRight(localExplorerURL, "/"),
		publicExplorerURL: strings.TrimRight(publicExplorerURL, "/"),
		tzOffset:          time.Duration(tzOffsetHours * float64(time.Hour)),
		tzLabel:           tzLabel,
	}
}

// Subject renders the notification subject line.
func (c Composer) Subject(walletName string) string {
	return fmt.Sprintf("[%s] Transaction in Monitored Wallet", walletName)
}

// Body renders the notification text for the given activity and its
// post-transaction balance.
//
// The "Original" (pre-transaction) figure is derived arithmetically from the
// ending balance and the amount. When a balance query races with chain state
// this is an approximation, not ground truth; the first-seen note covers the
// worst case.
func (c Composer) Body(activity txwatch.Activity, endingBalanceSats int64, observedAt time.Time) string {
	var (
		originalSats int64
		sign         string
	)
	switch activity.Direction {
	case txwatch.DirectionInbound:
		originalSats = endingBalanceSats - activity.AmountSats
		sign = "+"
	case txwatch.DirectionOutbound:
		originalSats = endingBalanceSats + activity.AmountSats
		sign = "-"
	default:
		originalSats = endingBalanceSats
		sign = " "
	}

	utc := observedAt.UTC()
	local := utc.Add(c.tzOffset)

	lines := []string{
		separator,
		fmt.Sprintf("Wallet:       %s", activity.WalletName),
		fmt.Sprintf("Direction:    %s", activity.Direction),
		fmt.Sprintf("Date (UTC):   %s", utc.Format(dateLayout)),
		fmt.Sprintf("Date (%s): %s", c.tzLabel, local.Format(dateLayout)),
		separator,
		fmt.Sprintf("Original:     %s BTC", FormatBTC(originalSats)),
		fmt.Sprintf("Transaction: %s%s BTC", sign, FormatBTC(activity.AmountSats)),
		fmt.Sprintf("Balance:      %s BTC", FormatBTC(endingBalanceSats)),
		separator,
	}

	if c.localExplorerURL != "" {
		lines = append(lines, fmt.Sprintf("%s/tx/%s", c.localExplorerURL, activity.TxID))
	}
	if c.publicExplorerURL != "" {
		lines = append(lines, fmt.Sprintf("%s/tx/%s", c.publicExplorerURL, activity.TxID))
	}

	if activity.FirstSeenForWallet {
		lines = append(lines, "", firstSeenNote)
	}

	return strings.Join(lines, "\n")
}

// FormatBTC renders a sat amount as a fixed 8-decimal BTC string. Integer
// arithmetic keeps the output exact; negative values (a derived Original can
// go below zero when the balance query degraded) keep their sign.
func FormatBTC(sats int64) string {
	negative := sats < 0
	if negative {
		sats = -sats
	}

	s := fmt.Sprintf("%d.%08d", sats/satsPerBTC, sats%satsPerBTC)
	if negative {
		return "-" + s
	}
	return s
}
