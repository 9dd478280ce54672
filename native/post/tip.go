package post

import "github.com/holiman/uint256"

// ppmDenominator converts TipPct, expressed in parts per million, to a fee.
const ppmDenominator = 1_000_000

// splitTip divides a tip into the fee cut and the creator royalty. The fee
// is zero unless a fee recipient is configured and the rate is nonzero.
// fee + royalty always equals the tip exactly.
func splitTip(cfg Config, tip *uint256.Int) (royalty, fee *uint256.Int, err error) {
	fee = uint256.NewInt(0)
	if cfg.FeeRecipient != "" && !cfg.Fees.TipPct.IsZero() {
		fee, err = mulRatio(tip, cfg.Fees.TipPct, ppmDenominator)
		if err != nil {
			return nil, nil, err
		}
	}
	royalty, err = subAmount(tip, fee)
	if err != nil {
		return nil, nil, err
	}
	return royalty, fee, nil
}

// applyTip accrues the full tip on the global and per-node royalty
// accumulators, then emits the fee and royalty payments. Payments are
// collected, never executed; the host settles them after commit.
func (s *state) applyTip(cfg Config, recipient Address, nodeID string, tip *uint256.Int) ([]Payment, error) {
	if tip == nil || tip.IsZero() {
		return nil, nil
	}
	if err := s.addRoyalties(tip); err != nil {
		return nil, err
	}
	if err := s.addNodeRoyalties(nodeID, tip); err != nil {
		return nil, err
	}
	royalty, fee, err := splitTip(cfg, tip)
	if err != nil {
		return nil, err
	}
	payments := make([]Payment, 0, 2)
	if !fee.IsZero() {
		payments = append(payments, Payment{Recipient: cfg.FeeRecipient, Denom: cfg.Denom, Amount: fee})
	}
	payments = append(payments, Payment{Recipient: recipient, Denom: cfg.Denom, Amount: royalty})
	return payments, nil
}
