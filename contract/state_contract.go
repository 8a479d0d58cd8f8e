package contract

import (
	"strconv"
	"strings"

	"okinoko_ido/sdk"
)

// -----------------------------------------------------------------------------
// Contract Configuration State
// -----------------------------------------------------------------------------

func (c *Contract) isInitialized() bool {
	ptr := c.state.Get(ContractConfigKey)
	return ptr != nil && *ptr != ""
}

// loadConfig returns ErrNotInitialized until init ran.
func (c *Contract) loadConfig() (*ContractConfig, error) {
	ptr := c.state.Get(ContractConfigKey)
	if ptr == nil || *ptr == "" {
		return nil, ErrNotInitialized
	}
	cfg, err := decodeContractConfig(*ptr)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Contract) saveConfig(cfg *ContractConfig) {
	c.state.Set(ContractConfigKey, encodeContractConfig(cfg))
}

// isAdmin is true for the owner and every address added via add_admin.
func (c *Contract) isAdmin(cfg *ContractConfig, addr sdk.Address) bool {
	if addr == cfg.Owner {
		return true
	}
	ptr := c.state.Get(adminKey(addr))
	return ptr != nil && *ptr != ""
}

func (c *Contract) requireAdmin(cfg *ContractConfig) error {
	if !c.isAdmin(cfg, c.sender()) {
		return ErrPermissionDenied.With("admin only")
	}
	return nil
}

func (c *Contract) setAdmin(addr sdk.Address) {
	c.state.Set(adminKey(addr), "1")
}

func (c *Contract) deleteAdmin(addr sdk.Address) {
	c.state.Delete(adminKey(addr))
}

// -----------------------------------------------------------------------------
// Contract Config Encoding
// -----------------------------------------------------------------------------

// encodeContractConfig serializes ContractConfig to a pipe-delimited string.
// Format: owner|treasury|feeDenominator|creationPublic|defaultMerkleRoot
func encodeContractConfig(cfg *ContractConfig) string {
	publicStr := "0"
	if cfg.AuctionCreationPublic {
		publicStr = "1"
	}
	return strings.Join([]string{
		cfg.Owner.String(),
		cfg.Treasury.String(),
		strconv.FormatUint(cfg.FeeDenominator, 10),
		publicStr,
		cfg.DefaultMerkleRoot,
	}, "|")
}

func decodeContractConfig(data string) (*ContractConfig, error) {
	parts := strings.Split(data, "|")
	if len(parts) != 5 {
		return nil, ErrInvalidArgument.With("corrupt contract config")
	}
	den, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return nil, ErrInvalidArgument.With("corrupt fee denominator")
	}
	return &ContractConfig{
		Owner:                 sdk.Address(parts[0]),
		Treasury:              sdk.Address(parts[1]),
		FeeDenominator:        den,
		AuctionCreationPublic: parts[3] == "1",
		DefaultMerkleRoot:     parts[4],
	}, nil
}
