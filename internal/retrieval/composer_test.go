package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/storage"
)

func phone(name, battery, price string) *storage.Phone {
	return &storage.Phone{
		ModelName: name,
		Battery:   storage.StringPtr(battery),
		Price:     storage.StringPtr(price),
	}
}

func TestFormatSpecs(t *testing.T) {
	p := &storage.Phone{
		ModelName:   "Galaxy S23 Ultra",
		ReleaseDate: storage.StringPtr("2023-02-17"),
		Display:     storage.StringPtr("6.8\" QHD+"),
		Battery:     storage.StringPtr("5000mAh"),
		Camera:      storage.StringPtr("200MP main"),
		RAM:         storage.StringPtr("12GB"),
		Price:       storage.StringPtr("$1199"),
	}

	want := "Galaxy S23 Ultra specs:\n" +
		"- Release: 2023-02-17\n" +
		"- Display: 6.8\" QHD+\n" +
		"- Battery: 5000mAh\n" +
		"- Camera: 200MP main\n" +
		"- RAM: 12GB\n" +
		"- Storage: N/A\n" +
		"- Price: $1199\n"
	assert.Equal(t, want, FormatSpecs(p))
}

func TestFormatComparison(t *testing.T) {
	p1 := phone("A", "5000mAh", "$900")
	p1.Camera = storage.StringPtr("50MP")
	p2 := phone("B", "4500mAh", "$800")

	t.Run("battery only", func(t *testing.T) {
		want := "Comparison: A vs B\n" +
			"- Battery:\n  A: 5000mAh\n  B: 4500mAh\n" +
			"Overall: For longer usage, prefer the phone with bigger battery capacity (mAh) in specs."
		assert.Equal(t, want, FormatComparison(p1, p2, FocusNone))
	})

	t.Run("camera focus", func(t *testing.T) {
		want := "Comparison: A vs B\n" +
			"- Camera:\n  A: 50MP\n  B: N/A\n" +
			"Recommendation: For photography, prefer the phone with stronger camera specs.\n" +
			"- Battery:\n  A: 5000mAh\n  B: 4500mAh\n" +
			"Overall: For longer usage, prefer the phone with bigger battery capacity (mAh) in specs."
		assert.Equal(t, want, FormatComparison(p1, p2, FocusCamera))
	})
}

func TestFormatCompareAnswer(t *testing.T) {
	p1 := phone("A", "5000mAh", "$900")
	p2 := phone("B", "4500mAh", "$800")

	got := FormatCompareAnswer(p1, p2, FocusNone)
	assert.Equal(t, FormatSpecs(p1)+"\n"+FormatSpecs(p2)+"\n"+FormatComparison(p1, p2, FocusNone), got)
}

func TestFormatBestBattery(t *testing.T) {
	got := FormatBestBattery(1000, phone("Galaxy M54", "6000mAh", "$450"))
	assert.Equal(t, "Best battery under $1000: Galaxy M54 (6000mAh, price: $450).", got)

	got = FormatBestBattery(1000, &storage.Phone{ModelName: "X", Price: storage.StringPtr("$450")})
	assert.Equal(t, "Best battery under $1000: X (N/A, price: $450).", got)
}

func TestBestBatteryUnder(t *testing.T) {
	phones := []*storage.Phone{
		phone("P900", "4000mAh", "$900"),
		phone("P950", "5000mAh", "$950"),
		phone("P1100", "6000mAh", "$1,100"),
		{ModelName: "NoPrice", Battery: storage.StringPtr("7000mAh")},
	}

	best := BestBatteryUnder(phones, 1000)
	if assert.NotNil(t, best) {
		assert.Equal(t, "P950", best.ModelName)
	}

	assert.Nil(t, BestBatteryUnder(phones, 500))
	assert.Nil(t, BestBatteryUnder(nil, 1000))
}

func TestBestBatteryUnder_BudgetIsInclusive(t *testing.T) {
	best := BestBatteryUnder([]*storage.Phone{phone("Exact", "4000mAh", "$1000")}, 1000)
	if assert.NotNil(t, best) {
		assert.Equal(t, "Exact", best.ModelName)
	}
}

func TestBestBatteryUnder_TieKeepsFirst(t *testing.T) {
	phones := []*storage.Phone{
		phone("First", "5000mAh", "$700"),
		phone("Second", "5000mAh", "$600"),
		phone("NoBattery", "", "$500"),
	}
	best := BestBatteryUnder(phones, 1000)
	if assert.NotNil(t, best) {
		assert.Equal(t, "First", best.ModelName)
	}
}
