package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"edc-panorama-api-server/internal/models"
)

// Name is how the assistant introduces itself.
const Name = "Panorama AI"

const reportThreshold = 200

const instructions = `CONSIGNES STRICTES:
1. Analyse TOUTES les données fournies ci-dessus.
2. Si l'utilisateur demande des acquisitions pour une année spécifique (ex: 2025), regarde le champ "Année" ou "Date Enreg".
3. Si l'utilisateur demande un rapport, structure-le proprement en Markdown (Titres ##, Listes à puces, Tableaux si pertinent).
4. Inclus des totaux et des sommaires (valeur totale, nombre d'articles) quand c'est pertinent.
5. Sois professionnel, précis et synthétique.
6. Si aucune donnée ne correspond, dis-le clairement.`

// BuildPrompt renders the single prompt sent to the model: identity, one
// line per asset, the question and the fixed instructions.
func BuildPrompt(question string, assets []models.Asset, companyName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "NOM DE L'ASSISTANT: %s\n", Name)
	fmt.Fprintf(&b, "CONTEXTE: Tu es une IA experte en audit et gestion de patrimoine pour l'entreprise %s.\n\n", companyName)
	b.WriteString("DONNÉES INVENTAIRE EXHAUSTIVES:\n")
	for _, a := range assets {
		b.WriteString(assetLine(a))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nDEMANDE UTILISATEUR: %q\n\n", question)
	b.WriteString(instructions)
	return b.String()
}

func assetLine(a models.Asset) string {
	value := "0"
	if a.Amount != nil && *a.Amount != 0 {
		value = strconv.FormatFloat(*a.Amount, 'f', -1, 64)
	}
	line := fmt.Sprintf("- [%s] %s (%s) | Année: %s | Date Enreg: %s | Loc: %s (Porte: %s) | Etat: %s | Détenteur: %s (%s) | Valeur: %s %s",
		a.Code, a.Name, a.Category,
		a.AcquisitionYear, a.RegistrationDate,
		a.Location, orDefault(a.Door, "N/A"),
		a.State,
		orDefault(a.Holder, "Aucun"), a.HolderPresence,
		value, a.Unit,
	)
	return strings.TrimRight(line, " ")
}

// IsReport flags answers that deserve the printable report view.
func IsReport(text string) bool {
	return len([]rune(text)) > reportThreshold || strings.Contains(text, "##") || strings.Contains(text, "|")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
