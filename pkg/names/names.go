// Package names repairs known defects in settlement, municipality and region
// names as they appear in GRAO tables.
package names

import "strings"

// corrections maps names misspelled in some GRAO periods to the spelling used
// by the NSI settlement register. Keys are compared after hyphens have been
// replaced by spaces, so only hyphen-free keys can ever match.
var corrections = map[string]string{
	"БОБОВДОЛ":            "БОБОВ ДОЛ",
	"ВЪЛЧИДОЛ":            "ВЪЛЧИ ДОЛ",
	"КАПИТАН ПЕТКО ВОЙВО": "КАПИТАН ПЕТКО ВОЙВОДА",
	"ДОБРИЧКА":            "ДОБРИЧ-СЕЛСКА",
	"ДОБРИЧ СЕЛСКА":       "ДОБРИЧ-СЕЛСКА",
	"БЕРАИНЦИ":            "БЕРАЙНЦИ",
	"ФЕЛТФЕБЕЛ ДЕНКОВО":   "ФЕЛДФЕБЕЛ ДЕНКОВО",
	"УРУЧОВЦИ":            "УРУЧЕВЦИ",
	"ПОЛИКРАЙЩЕ":          "ПОЛИКРАИЩЕ",
	"КАМЕШИЦА":            "КАМЕЩИЦА",
	"БОГДАНОВДОЛ":         "БОГДАНОВ ДОЛ",
	"СИНЬО БЬРДО":         "СИНЬО БЪРДО",
	"ЗЕЛЕН ДОЛ":           "ЗЕЛЕНДОЛ",
	"МАРИКОСТЕНОВО":       "МАРИКОСТИНОВО",
	"САНСТЕФАНО":          "САН-СТЕФАНО",
	"САН СТЕФАНО":         "САН-СТЕФАНО",
	"ПЕТРОВДОЛ":           "ПЕТРОВ ДОЛ",
	"ЧАПАЕВО":             "ЦАРСКИ ИЗВОР",
	"ЕЛОВДОЛ":             "ЕЛОВ ДОЛ",
	"В. ТЪРНОВО":          "ВЕЛИКО ТЪРНОВО",
	"В.ТЪРНОВО":           "ВЕЛИКО ТЪРНОВО",
	"ГЕНЕРАЛ-ТОШОВО":      "ГЕНЕРАЛ ТОШЕВО",
	"ГЕНЕРАЛ ТОШОВО":      "ГЕНЕРАЛ ТОШЕВО",
	"ГЕНЕРАЛ-ТОШЕВО":      "ГЕНЕРАЛ ТОШЕВО",
	"БЕДЖДЕНЕ":            "БЕДЖЕНЕ",
	"ТАЙМИШЕ":             "ТАЙМИЩЕ",
	"СТОЯН ЗАИМОВО":       "СТОЯН-ЗАИМОВО",
	"ДАСКАЛ АТАНАСОВО":    "ДАСКАЛ-АТАНАСОВО",
	"СЛАВЕИНО":            "СЛАВЕЙНО",
	"КРАЛЕВДОЛ":           "КРАЛЕВ ДОЛ",
	"ФЕЛДФЕБЕЛ ДЯНКОВО":   "ФЕЛДФЕБЕЛ ДЕНКОВО",
	"ДЛЪХЧЕВО САБЛЯР":     "ДЛЪХЧЕВО-САБЛЯР",
	"ГОЛЕМ ВЪРБОВНИК":     "ГОЛЯМ ВЪРБОВНИК",
	"ПОЛКОВНИК ЖЕЛЕЗОВО":  "ПОЛКОВНИК ЖЕЛЯЗОВО",
	"ДОБРИЧ ГРАД":         "ДОБРИЧ",
	"ЦАР ПЕТРОВО":         "ЦАР-ПЕТРОВО",
	"ВЪЛЧАНДОЛ":           "ВЪЛЧАН ДОЛ",
	"ПАНАГЮРСКИ КОЛОНИ":   "ПАНАГЮРСКИ КОЛОНИИ",
	"ГОРСКИ ГОРЕН ТРЪМБЕ": "ГОРСКИ ГОРЕН ТРЪМБЕШ",
	"ГОРСКИ ДОЛЕН ТРЪМБЕ": "ГОРСКИ ДОЛЕН ТРЪМБЕШ",
	"ГЕНЕРАЛ-КАНТАРДЖИЕВ": "ГЕНЕРАЛ КАНТАРДЖИЕВО",
	"ГЕНЕРАЛ КАНТАРДЖИЕВ": "ГЕНЕРАЛ КАНТАРДЖИЕВО",
	"АЛЕКСАНДЪР СТАМБОЛИ": "АЛЕКСАНДЪР СТАМБОЛИЙСКИ",
	"ПОЛКОВНИК-ЛАМБРИНОВ": "ПОЛКОВНИК ЛАМБРИНОВО",
	"ПОЛКОВНИК ЛАМБРИНОВ": "ПОЛКОВНИК ЛАМБРИНОВО",
	"ПОЛКОВНИК-СЕРАФИМОВ": "ПОЛКОВНИК СЕРАФИМОВО",
	"ПОЛКОВНИК СЕРАФИМОВ": "ПОЛКОВНИК СЕРАФИМОВО",
}

// Normalize repairs a name fragment.
//
// Some years print the soft sign Ь where the hard sign Ъ belongs. Ь is
// legitimate in Bulgarian only before О, so every Ь is replaced when the
// first one is not followed by О. Hyphens are then turned into spaces and
// the result is looked up in the fixed correction table.
//
// Normalize is idempotent.
func Normalize(name string) string {
	out := repairSoftSign(name)
	out = strings.ReplaceAll(out, "-", " ")
	if fixed, ok := corrections[out]; ok {
		return fixed
	}
	return out
}

func repairSoftSign(name string) string {
	runes := []rune(name)
	for i, r := range runes {
		if r != 'Ь' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] == 'О' {
			return name
		}
		return strings.ReplaceAll(name, "Ь", "Ъ")
	}
	return name
}
