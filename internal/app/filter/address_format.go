package filter

import (
	"context"

	"github.com/junlend/web/internal/domain/wallet"
)

// AddressFormatFilter rejects accounts that are not 20-byte hex addresses.
type AddressFormatFilter struct{}

func (f *AddressFormatFilter) Name() string {
	return "address_format_filter"
}

func (f *AddressFormatFilter) Description() string {
	return "Rejects accounts that are not valid hex addresses or fail the checksum"
}

func (f *AddressFormatFilter) ReturnCodes() []string {
	return []string{"invalid_address"}
}

func (f *AddressFormatFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *AddressFormatFilter) Check(ctx context.Context, req ConnectRequest) Result {
	if !wallet.HasValidChecksum(req.Address) {
		return Reject("invalid_address")
	}
	return Accept()
}

func init() {
	Register("address_format_filter", func() Filter {
		return &AddressFormatFilter{}
	})
}
