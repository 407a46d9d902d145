package retrieval

import (
	"fmt"
	"strings"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/storage"
)

// AbsentMarker is rendered in place of a field the catalog leaves empty.
const AbsentMarker = "N/A"

// Fixed answers.
const (
	MsgModelNotFound       = "Model not found in database."
	MsgCompareUsage        = "Ask like: Compare Galaxy S23 Ultra and S22 Ultra for photography."
	MsgCompareNoMatch      = "Could not match one or both models."
	MsgCompareLoadFailed   = "Could not load phone data from database."
	MsgBudgetUsage         = "Please ask like: Which Samsung phone has the best battery under $1000?"
	MsgNoPhonesUnderBudget = "No phones found under that budget with a parseable price in this dataset."
	MsgHelp                = "Try: 'Specs of Galaxy S23 Ultra', 'Compare S23 Ultra and S22 Ultra', or 'best battery under $1000'."

	cameraRecommendation  = "Recommendation: For photography, prefer the phone with stronger camera specs."
	batteryRecommendation = "Overall: For longer usage, prefer the phone with bigger battery capacity (mAh) in specs."
)

// FormatSpecs renders the full spec block for one phone. The block ends with a newline.
func FormatSpecs(p *storage.Phone) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s specs:\n", p.ModelName)
	fmt.Fprintf(&b, "- Release: %s\n", display(p.ReleaseDate))
	fmt.Fprintf(&b, "- Display: %s\n", display(p.Display))
	fmt.Fprintf(&b, "- Battery: %s\n", display(p.Battery))
	fmt.Fprintf(&b, "- Camera: %s\n", display(p.Camera))
	fmt.Fprintf(&b, "- RAM: %s\n", display(p.RAM))
	fmt.Fprintf(&b, "- Storage: %s\n", display(p.Storage))
	fmt.Fprintf(&b, "- Price: %s\n", display(p.Price))
	return b.String()
}

// FormatComparison renders the comparison section for two phones.
func FormatComparison(p1, p2 *storage.Phone, focus Focus) string {
	lines := []string{fmt.Sprintf("Comparison: %s vs %s", p1.ModelName, p2.ModelName)}

	if focus == FocusCamera {
		lines = append(lines,
			sideBySide("Camera", p1.ModelName, p1.Camera, p2.ModelName, p2.Camera),
			cameraRecommendation,
		)
	}

	lines = append(lines,
		sideBySide("Battery", p1.ModelName, p1.Battery, p2.ModelName, p2.Battery),
		batteryRecommendation,
	)

	return strings.Join(lines, "\n")
}

// FormatCompareAnswer is both spec blocks followed by the comparison section.
func FormatCompareAnswer(p1, p2 *storage.Phone, focus Focus) string {
	return FormatSpecs(p1) + "\n" + FormatSpecs(p2) + "\n" + FormatComparison(p1, p2, focus)
}

// FormatBestBattery renders the one-line budget recommendation.
func FormatBestBattery(budget int, p *storage.Phone) string {
	return fmt.Sprintf("Best battery under $%d: %s (%s, price: %s).",
		budget, p.ModelName, display(p.Battery), display(p.Price))
}

// BestBatteryUnder picks the phone with the largest battery among those with a
// parseable price at or below budget. Ties keep the earliest phone. Returns nil
// when nothing qualifies.
func BestBatteryUnder(phones []*storage.Phone, budget int) *storage.Phone {
	var (
		best    *storage.Phone
		bestCap int
	)
	for _, p := range phones {
		price, ok := ExtractPriceNumber(p.Price)
		if !ok || price > budget {
			continue
		}
		capacity := BatteryCapacity(p.Battery)
		if best == nil || capacity > bestCap {
			best, bestCap = p, capacity
		}
	}
	return best
}

func sideBySide(label, name1 string, v1 *string, name2 string, v2 *string) string {
	return fmt.Sprintf("- %s:\n  %s: %s\n  %s: %s", label, name1, display(v1), name2, display(v2))
}

func display(v *string) string {
	if v == nil {
		return AbsentMarker
	}
	return *v
}
