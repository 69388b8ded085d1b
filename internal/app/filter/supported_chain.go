package filter

import (
	"context"
)

// SupportedChainFilter rejects connections on chains the site is not configured for.
type SupportedChainFilter struct {
	chainIDs map[int64]bool
}

// NewSupportedChainFilter creates a new supported chain filter.
func NewSupportedChainFilter(chainIDs []int64) *SupportedChainFilter {
	ids := make(map[int64]bool, len(chainIDs))
	for _, id := range chainIDs {
		ids[id] = true
	}
	return &SupportedChainFilter{chainIDs: ids}
}

func (f *SupportedChainFilter) Name() string {
	return "supported_chain_filter"
}

func (f *SupportedChainFilter) Description() string {
	return "Rejects connections on chains that are not configured"
}

func (f *SupportedChainFilter) ReturnCodes() []string {
	return []string{"unsupported_chain"}
}

func (f *SupportedChainFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *SupportedChainFilter) Check(ctx context.Context, req ConnectRequest) Result {
	if !f.chainIDs[req.ChainID] {
		return Reject("unsupported_chain")
	}
	return Accept()
}

func init() {
	Register("supported_chain_filter", func() Filter {
		return NewSupportedChainFilter(nil)
	})
}
