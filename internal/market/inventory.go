package market

import "github.com/reciloop/reciloop/internal/api"

// Inventory statuses as sent by the backend.
const (
	StatusAvailable = "disponível"
	StatusReserved  = "reservado"
)

// Available reports whether an inventory row can still be claimed.
func Available(item api.InventoryItem) bool {
	return item.Status == StatusAvailable
}

// StatusLabel is the display label for an inventory status.
func StatusLabel(status string) string {
	switch status {
	case StatusAvailable:
		return "Disponível"
	case StatusReserved:
		return "Reservado"
	case "":
		return "-"
	default:
		return status
	}
}

// InventorySummary counts rows by availability.
type InventorySummary struct {
	Available  int
	Reserved   int
	Interested int
}

// Summarize tallies available and reserved rows and the total interest count.
func Summarize(items []api.InventoryItem) InventorySummary {
	var s InventorySummary
	for _, it := range items {
		if Available(it) {
			s.Available++
		} else {
			s.Reserved++
		}
		s.Interested += len(it.InterestedCompanies)
	}
	return s
}
