package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clearclose/closing-service/internal/constants"
	"github.com/clearclose/closing-service/internal/models"
	"github.com/clearclose/closing-service/internal/repositories"
)

// FeeService resolves the statutory charges and the project fee schedule
// that feed the statement of adjustments.
type FeeService struct {
	projectRepo repositories.ProjectRepository
}

func NewFeeService(projectRepo repositories.ProjectRepository) *FeeService {
	return &FeeService{projectRepo: projectRepo}
}

// OntarioLandTransferTax applies the provincial marginal brackets to the
// full consideration (price plus add-ons).
func (s *FeeService) OntarioLandTransferTax(consideration decimal.Decimal) decimal.Decimal {
	return bracketTax(consideration, constants.OntarioLTTBrackets)
}

// TorontoLandTransferTax applies the municipal brackets. Callers only
// invoke it for projects inside Toronto.
func (s *FeeService) TorontoLandTransferTax(consideration decimal.Decimal) decimal.Decimal {
	return bracketTax(consideration, constants.TorontoLTTBrackets)
}

// TarionFee looks up the warranty enrolment fee for the sale price.
func (s *FeeService) TarionFee(salePrice decimal.Decimal) decimal.Decimal {
	for _, band := range constants.TarionFeeBands {
		if salePrice.LessThanOrEqual(decimal.NewFromFloat(band.Ceiling)) {
			return decimal.NewFromFloat(band.Fee)
		}
	}
	return decimal.NewFromInt(constants.TarionFeeCap)
}

// ProjectFeeAmount resolves one project-level fee code for a unit.
// Percentage fees are taken against the unit's base purchase price.
// A missing row means the project simply does not charge that fee.
func (s *FeeService) ProjectFeeAmount(
	ctx context.Context,
	projectID uuid.UUID,
	code models.ProjectFeeCode,
	purchasePrice decimal.Decimal,
) (decimal.Decimal, error) {
	fees, err := s.projectRepo.ListFees(ctx, projectID)
	if err != nil {
		return decimal.Zero, err
	}
	return resolveFee(fees, code, purchasePrice), nil
}

// ProjectFees resolves the whole schedule in one read.
func (s *FeeService) ProjectFees(
	ctx context.Context,
	projectID uuid.UUID,
	purchasePrice decimal.Decimal,
) (map[models.ProjectFeeCode]decimal.Decimal, error) {
	fees, err := s.projectRepo.ListFees(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := map[models.ProjectFeeCode]decimal.Decimal{
		models.FeeCodeDevelopmentCharges: resolveFee(fees, models.FeeCodeDevelopmentCharges, purchasePrice),
		models.FeeCodeLegalFees:          resolveFee(fees, models.FeeCodeLegalFees, purchasePrice),
		models.FeeCodeEstimatedLandTax:   resolveFee(fees, models.FeeCodeEstimatedLandTax, purchasePrice),
		models.FeeCodeEstimatedMaint:     resolveFee(fees, models.FeeCodeEstimatedMaint, purchasePrice),
		models.FeeCodeOtherDebits:        resolveFee(fees, models.FeeCodeOtherDebits, purchasePrice),
	}
	return out, nil
}

func resolveFee(fees []*models.ProjectFee, code models.ProjectFeeCode, purchasePrice decimal.Decimal) decimal.Decimal {
	for _, f := range fees {
		if f.Code != code {
			continue
		}
		if f.IsPerUnitPct {
			return purchasePrice.Mul(f.Amount).Div(decimal.NewFromInt(100))
		}
		return f.Amount
	}
	return decimal.Zero
}

// bracketTax charges each bracket's rate on the slice of value above its
// floor, up to the next bracket's floor.
func bracketTax(value decimal.Decimal, brackets []constants.LTTBracket) decimal.Decimal {
	if value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	tax := decimal.Zero
	for i, b := range brackets {
		floor := decimal.NewFromFloat(b.Floor)
		if value.LessThanOrEqual(floor) {
			break
		}
		top := value
		if i+1 < len(brackets) {
			ceil := decimal.NewFromFloat(brackets[i+1].Floor)
			if top.GreaterThan(ceil) {
				top = ceil
			}
		}
		slice := top.Sub(floor)
		tax = tax.Add(slice.Mul(decimal.NewFromFloat(b.Rate)))
	}
	return tax
}
