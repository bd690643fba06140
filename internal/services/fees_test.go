package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/clearclose/closing-service/internal/models"
)

func TestOntarioLandTransferTaxBrackets(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name     string
		price    float64
		expected string
	}{
		{"zero consideration", 0, "0"},
		{"first bracket only", 50_000, "250"},
		{"exactly at first ceiling", 55_000, "275"},
		{"second bracket", 250_000, "2225"},
		{"third bracket", 400_000, "4475"},
		{"fourth bracket", 600_000, "8475"},
		{"exactly at luxury floor", 2_000_000, "36475"},
		{"luxury bracket", 2_500_000, "48975"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := f.feeSvc.OntarioLandTransferTax(decimal.NewFromFloat(tc.price))
			require.True(t, got.Equal(decimal.RequireFromString(tc.expected)),
				"expected %s, got %s", tc.expected, got)
		})
	}
}

func TestTorontoLandTransferTaxMirrorsProvincial(t *testing.T) {
	f := newFixture()
	price := decimal.NewFromInt(600_000)

	ontario := f.feeSvc.OntarioLandTransferTax(price)
	toronto := f.feeSvc.TorontoLandTransferTax(price)
	require.True(t, toronto.Equal(ontario), "municipal brackets mirror the provincial ones")
}

func TestTarionFeeBands(t *testing.T) {
	f := newFixture()

	cases := []struct {
		price    float64
		expected string
	}{
		{100_000, "385"},
		{100_001, "440"},
		{600_000, "935"},
		{1_000_000, "1375"},
		{1_200_000, "1430"}, // above the last band, capped
	}
	for _, tc := range cases {
		got := f.feeSvc.TarionFee(decimal.NewFromFloat(tc.price))
		require.True(t, got.Equal(decimal.RequireFromString(tc.expected)),
			"price %.0f: expected %s, got %s", tc.price, tc.expected, got)
	}
}

func TestProjectFeeAmountFlatAndPercentage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	project := f.seedProject(false)

	require.NoError(t, f.projects.UpsertFee(ctx, &models.ProjectFee{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Code:      models.FeeCodeLegalFees,
		Amount:    decimal.NewFromInt(1_800),
	}))
	require.NoError(t, f.projects.UpsertFee(ctx, &models.ProjectFee{
		ID:           uuid.New(),
		ProjectID:    project.ID,
		Code:         models.FeeCodeDevelopmentCharges,
		Amount:       decimal.NewFromInt(2), // 2% of purchase price
		IsPerUnitPct: true,
	}))

	price := decimal.NewFromInt(500_000)

	legal, err := f.feeSvc.ProjectFeeAmount(ctx, project.ID, models.FeeCodeLegalFees, price)
	require.NoError(t, err)
	require.True(t, legal.Equal(decimal.NewFromInt(1_800)))

	dev, err := f.feeSvc.ProjectFeeAmount(ctx, project.ID, models.FeeCodeDevelopmentCharges, price)
	require.NoError(t, err)
	require.True(t, dev.Equal(decimal.NewFromInt(10_000)), "2%% of 500k, got %s", dev)

	// A project that never configured a fee simply does not charge it.
	other, err := f.feeSvc.ProjectFeeAmount(ctx, project.ID, models.FeeCodeOtherDebits, price)
	require.NoError(t, err)
	require.True(t, other.IsZero())
}
