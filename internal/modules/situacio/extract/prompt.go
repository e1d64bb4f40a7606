package extract

import (
	"fmt"
	"strings"
)

// MaxInputRunes bounds what is sent to the model.
const MaxInputRunes = 60000

const systemPrompt = `Ets un assistent expert en programació didàctica del currículum de Catalunya.
Rebràs notes lliures d'un docent i has d'omplir una Situació d'Aprenentatge seguint l'esquema JSON.

Regles:
- Escriu en català.
- Almenys 3 competències específiques, 3 objectius, 3 criteris d'avaluació i 3 sabers.
- Les competències específiques sense el prefix "CE.n."; la numeració la posa l'aplicació.
- Les quatre fases (inicial, desenvolupament, estructuració, aplicació) sempre amb descripció.
- Si una dada no apareix a les notes, dedueix-la de manera raonable a partir del context.
- Les mesures addicionals només si les notes parlen d'alumnes concrets; si no, llista buida.
- No inventis noms reals d'alumnes: fes servir etiquetes anònimes.`

// BuildUserPrompt wraps the raw planning notes, truncated to MaxInputRunes.
func BuildUserPrompt(raw string) string {
	raw = strings.TrimSpace(raw)
	if r := []rune(raw); len(r) > MaxInputRunes {
		raw = string(r[:MaxInputRunes])
	}
	return fmt.Sprintf("NOTES DEL DOCENT:\n<<<\n%s\n>>>", raw)
}
