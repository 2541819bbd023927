package services

import (
	"fmt"
	"sort"
	"strings"

	"map-action-api/models"
)

// Trend labels. A series whose last value does not strictly exceed its
// first is reported as a decrease; ties count as decrease.
const (
	TrendIncrease = "augmentation"
	TrendDecrease = "diminution"
)

// Synthesize produces the French analysis narrative from the computed
// series and histogram. Pure and deterministic: identical inputs yield
// byte-identical text. An index with an empty series gets an explicit
// insufficient-data sentence instead of trend and mean figures.
func Synthesize(ndvi, ndwi models.IndexTimeSeries, landcover models.LandCoverHistogram, incident models.IncidentType) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyse de l'incident de type '%s':\n\n", incident)

	// Vegetation section
	if len(ndvi) == 0 {
		b.WriteString("Les données satellites disponibles sont insuffisantes pour évaluer l'indice de végétation (NDVI) sur la période analysée.\n")
	} else {
		avg := seriesMean(ndvi)
		fmt.Fprintf(&b, "L'indice de végétation (NDVI) moyen est de %.2f, avec une tendance à la %s sur la période analysée. ", avg, seriesTrend(ndvi))
		b.WriteString("Cela indique une santé de la végétation ")
		switch {
		case avg > 0.5:
			b.WriteString("généralement bonne.\n")
		case avg > 0.3:
			b.WriteString("modérée.\n")
		default:
			b.WriteString("potentiellement faible ou une zone avec peu de végétation.\n")
		}
	}

	// Water section
	if len(ndwi) == 0 {
		b.WriteString("\nLes données satellites disponibles sont insuffisantes pour évaluer l'indice d'eau (NDWI) sur la période analysée.\n")
	} else {
		avg := seriesMean(ndwi)
		fmt.Fprintf(&b, "\nL'indice d'eau (NDWI) moyen est de %.2f, avec une tendance à la %s. ", avg, seriesTrend(ndwi))
		b.WriteString("Cela suggère ")
		if avg > 0 {
			b.WriteString("la présence significative d'eau dans la zone.\n")
		} else {
			b.WriteString("une zone relativement sèche ou avec peu d'eau de surface.\n")
		}
	}

	// Land-cover section
	if landcover.Total() == 0 {
		b.WriteString("\nAucune donnée de couverture terrestre n'a pu être échantillonnée dans la zone tampon.\n")
	} else {
		dominant := dominantClass(landcover)
		pct := float64(landcover[dominant]) / float64(landcover.Total()) * 100
		fmt.Fprintf(&b, "\nLa couverture terrestre dominante dans la zone est '%s', représentant %.1f%% de la surface analysée.\n", dominant, pct)
	}

	switch incident.Kind {
	case models.IncidentDeforestation:
		writeDeforestation(&b, ndvi, landcover)
	case models.IncidentWaterPollution:
		writeWaterPollution(&b, ndwi)
	}

	return b.String()
}

func writeDeforestation(b *strings.Builder, ndvi models.IndexTimeSeries, landcover models.LandCoverHistogram) {
	b.WriteString("\nEn ce qui concerne la déforestation, ")

	if landcover.Total() == 0 {
		b.WriteString("les données de couverture terrestre sont insuffisantes pour estimer la couverture arborée de la zone.")
		return
	}

	treeCount, hasTrees := landcover[TreeCoverClass]
	if !hasTrees {
		b.WriteString("la zone ne semble pas avoir une couverture forestière significative actuellement. ")
		b.WriteString("Cela pourrait indiquer une déforestation passée ou une zone naturellement non boisée.")
		return
	}

	pct := float64(treeCount) / float64(landcover.Total()) * 100
	fmt.Fprintf(b, "la zone présente actuellement %.1f%% de couverture arborée. ", pct)

	if len(ndvi) == 0 {
		b.WriteString("Les données NDVI disponibles sont insuffisantes pour évaluer une perte de végétation récente.")
		return
	}
	if seriesTrend(ndvi) == TrendDecrease {
		b.WriteString("La tendance à la baisse du NDVI pourrait indiquer une perte récente de végétation, ")
		b.WriteString("potentiellement liée à des activités de déforestation.")
	} else {
		b.WriteString("Malgré la préoccupation de déforestation, le NDVI ne montre pas de tendance à la baisse, ")
		b.WriteString("ce qui pourrait suggérer que la déforestation n'est pas active ou est compensée par la croissance ailleurs.")
	}
}

func writeWaterPollution(b *strings.Builder, ndwi models.IndexTimeSeries) {
	b.WriteString("\nConcernant la pollution de l'eau, ")

	if len(ndwi) == 0 {
		b.WriteString("les données NDWI disponibles sont insuffisantes pour évaluer l'étendue des surfaces d'eau. ")
		b.WriteString("L'analyse satellite ne permet pas de confirmer une pollution ; des analyses in situ seraient nécessaires.")
		return
	}

	if seriesMean(ndwi) > 0 {
		b.WriteString("la présence d'eau est confirmée par l'indice NDWI positif. ")
		if seriesTrend(ndwi) == TrendDecrease {
			b.WriteString("La tendance à la baisse du NDWI pourrait indiquer une réduction des surfaces d'eau, ")
			b.WriteString("potentiellement liée à la pollution ou à d'autres facteurs environnementaux. ")
			b.WriteString("L'analyse satellite ne mesure que l'étendue de l'eau ; la pollution elle-même nécessiterait des analyses in situ pour être confirmée.")
		} else {
			b.WriteString("Le NDWI stable ou en augmentation suggère que la quantité d'eau de surface n'a pas diminué. ")
			b.WriteString("Cependant, cela n'exclut pas la possibilité de pollution, qui nécessiterait des analyses in situ pour être confirmée.")
		}
	} else {
		b.WriteString("l'indice NDWI faible suggère peu d'eau de surface dans la zone. ")
		b.WriteString("La pollution de l'eau pourrait concerner des sources d'eau souterraines ou des cours d'eau temporaires non détectés par l'analyse satellite.")
	}
}

// seriesTrend compares last against first value. Strict inequality:
// an unchanged series reads as a decrease.
func seriesTrend(series models.IndexTimeSeries) string {
	if series[len(series)-1].Value > series[0].Value {
		return TrendIncrease
	}
	return TrendDecrease
}

func seriesMean(series models.IndexTimeSeries) float64 {
	sum := 0.0
	for _, p := range series {
		sum += p.Value
	}
	return sum / float64(len(series))
}

// dominantClass returns the histogram key with the maximum count.
// Ties break toward the lexicographically smaller name, keeping the
// narrative deterministic.
func dominantClass(landcover models.LandCoverHistogram) string {
	names := make([]string, 0, len(landcover))
	for name := range landcover {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if landcover[name] > landcover[best] {
			best = name
		}
	}
	return best
}
