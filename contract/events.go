package contract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"

	"snap-vault/vaulterr"
)

// ParseCreatedEvent extract the chain-assigned vault id from the
// creation event in a receipt. A receipt without the event is an
// explicit EventNotFound, never a sentinel id.
func (c *Client) ParseCreatedEvent(receipt *types.Receipt) (uint64, error) {
	eventID := c.abi.Events["SnapCreated"].ID
	for _, entry := range receipt.Logs {
		if entry.Address != c.address || len(entry.Topics) < 2 || entry.Topics[0] != eventID {
			continue
		}
		return entry.Topics[1].Big().Uint64(), nil
	}
	return 0, vaulterr.New(vaulterr.KindEventNotFound,
		fmt.Sprintf("transaction %s carries no vault creation event", receipt.TxHash.Hex()))
}

// ParseOpenedEvent extract the vault id from an open event in a receipt
func (c *Client) ParseOpenedEvent(receipt *types.Receipt) (uint64, error) {
	eventID := c.abi.Events["SnapOpened"].ID
	for _, entry := range receipt.Logs {
		if entry.Address != c.address || len(entry.Topics) < 2 || entry.Topics[0] != eventID {
			continue
		}
		return entry.Topics[1].Big().Uint64(), nil
	}
	return 0, vaulterr.New(vaulterr.KindEventNotFound,
		fmt.Sprintf("transaction %s carries no vault open event", receipt.TxHash.Hex()))
}
