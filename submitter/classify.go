package submitter

import (
	"strings"

	"snap-vault/vaulterr"
)

// Classify map a raw wallet/RPC submission error onto the error
// taxonomy. Provider SDKs disagree on codes and phrasing, so the match
// is by message substring and happens only here; everything downstream
// switches on the kind.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if vaulterr.KindOf(err) != vaulterr.KindUnknown {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected"),
		strings.Contains(msg, "user denied"),
		strings.Contains(msg, "rejected by user"),
		strings.Contains(msg, "request rejected"):
		return vaulterr.Wrap(vaulterr.KindUserRejected, "transaction declined in wallet", err)
	case strings.Contains(msg, "insufficient funds"),
		strings.Contains(msg, "insufficient balance"),
		strings.Contains(msg, "exceeds balance"):
		return vaulterr.Wrap(vaulterr.KindInsufficientFunds, "account balance cannot cover value plus gas", err)
	default:
		return vaulterr.Wrap(vaulterr.KindChainExecutionFailed, "transaction submission failed", err)
	}
}
