package post

import "github.com/holiman/uint256"

// UnitTextLength is the body-length block size the text fee is charged per.
const UnitTextLength = 280

// ComputeNodeCost prices a content action from the current fee params and
// the content shape. Pure: it reads no state. Every multiplication and the
// final sum are checked.
func ComputeNodeCost(fees FeeParams, isUpdate bool, bodyLen, nTags, nLinks int) (*uint256.Int, CostSubtotals, error) {
	fees = fees.Normalize()

	tagFee, err := mulAmount(fees.Tag, uint64(nTags))
	if err != nil {
		return nil, CostSubtotals{}, err
	}
	linkFee, err := mulAmount(fees.Link, uint64(nLinks))
	if err != nil {
		return nil, CostSubtotals{}, err
	}
	textFee, err := mulAmount(fees.Text, uint64(bodyLen/UnitTextLength))
	if err != nil {
		return nil, CostSubtotals{}, err
	}
	creationFee := uint256.NewInt(0)
	if !isUpdate {
		creationFee = new(uint256.Int).Set(fees.Creation)
	}

	total := uint256.NewInt(0)
	for _, part := range []*uint256.Int{tagFee, linkFee, textFee, creationFee} {
		total, err = addAmount(total, part)
		if err != nil {
			return nil, CostSubtotals{}, err
		}
	}
	return total, CostSubtotals{Creation: creationFee, Body: textFee, Tags: tagFee, Links: linkFee}, nil
}
