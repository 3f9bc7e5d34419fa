package assistant

import (
	"fmt"
	"strings"

	"github.com/tbourn/go-cellar-backend/internal/domain"
)

// User-facing replies used when the provider gives nothing usable.
const (
	FallbackReply      = "I apologize, my tasting notes are a bit fuzzy. Could you repeat that?"
	ConnectionReply    = "The cellar door seems stuck. Please check your connection and try again."
	NotConfiguredReply = "The sommelier is not available yet: no Gemini API key is configured. Set GEMINI_API_KEY and restart the service."
)

// LabelInstruction is sent alongside the label photo.
const LabelInstruction = "Extract wine details from this label: Name, Producer, Varietal, Vintage, Region, and Type (Red, White, Rosé, Sparkling, Dessert). Return ONLY JSON."

const persona = `You are VintnerAI, a world-class Master Sommelier.
Your tone is sophisticated, knowledgeable, yet accessible.
%s
Provide expert advice on wine pairings, aging potential, and recommendations from their existing collection.
If they ask for something they don't have, politely suggest the best alternative from their cellar or explain what style they should look for.
Always prioritize using their current inventory for pairing suggestions.`

// EmptyCellar is the context used when the user owns no wines.
const EmptyCellar = "The user's cellar is currently empty."

// CellarContext lists the cellar one record per item, joined with ", ":
//
//	2018 Domaine X Cuvée Y (Pinot Noir, Red) x2
func CellarContext(ws []domain.Wine) string {
	if len(ws) == 0 {
		return EmptyCellar
	}
	items := make([]string, len(ws))
	for i, w := range ws {
		items[i] = fmt.Sprintf("%s %s %s (%s, %s) x%d", w.Vintage, w.Producer, w.Name, w.Varietal, w.Type, w.Quantity)
	}
	return strings.Join(items, ", ")
}

// SystemInstruction builds the sommelier persona around the cellar context.
func SystemInstruction(ws []domain.Wine) string {
	return fmt.Sprintf(persona, "The user's cellar contains: "+CellarContext(ws)+".")
}
