package render

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// translations holds the page labels per locale. Keys missing from a locale
// fall back to English.
var translations = map[string]map[string]string{
	"en": {
		"site.title":              "ParkPulse",
		"site.tagline":            "Live wait times for theme parks worldwide",
		"nav.home":                "All parks",
		"nav.nearby":              "Near me",
		"nav.favorites":           "Favorites",
		"stale.banner":            "Live data is temporarily unavailable. Showing the last known values.",
		"home.title":              "Theme parks by destination",
		"place.parks":             "%d parks",
		"park.attractions":        "Attractions",
		"park.waitTime":           "%d min",
		"park.noWait":             "No wait reported",
		"park.calendar":           "Opening calendar",
		"attraction.backToPark":   "Back to %s",
		"nearby.title":            "Parks near you",
		"nearby.inPark":           "You are at %s",
		"nearby.count":            "%d parks nearby",
		"nearby.none":             "No parks found nearby.",
		"nearby.locationRequired": "Allow location access or enter coordinates to find parks near you.",
		"favorites.title":         "Your favorites",
		"favorites.empty":         "You have no favorites yet.",
		"favorites.parks":         "Parks",
		"favorites.attractions":   "Attractions",
		"favorites.shows":         "Shows",
		"favorites.restaurants":   "Restaurants",
		"error.notFound":          "Page not found",
		"error.generic":           "Something went wrong. Please try again later.",
		"distance.m":              "%d m",
		"distance.km":             "%.1f km",
	},
	"de": {
		"site.tagline":            "Live-Wartezeiten für Freizeitparks weltweit",
		"nav.home":                "Alle Parks",
		"nav.nearby":              "In der Nähe",
		"nav.favorites":           "Favoriten",
		"stale.banner":            "Live-Daten sind vorübergehend nicht verfügbar. Es werden die zuletzt bekannten Werte angezeigt.",
		"home.title":              "Freizeitparks nach Reiseziel",
		"place.parks":             "%d Parks",
		"park.attractions":        "Attraktionen",
		"park.waitTime":           "%d Min.",
		"park.noWait":             "Keine Wartezeit gemeldet",
		"park.calendar":           "Öffnungskalender",
		"attraction.backToPark":   "Zurück zu %s",
		"nearby.title":            "Parks in deiner Nähe",
		"nearby.inPark":           "Du bist im %s",
		"nearby.count":            "%d Parks in der Nähe",
		"nearby.none":             "Keine Parks in der Nähe gefunden.",
		"nearby.locationRequired": "Erlaube den Standortzugriff oder gib Koordinaten ein, um Parks in deiner Nähe zu finden.",
		"favorites.title":         "Deine Favoriten",
		"favorites.empty":         "Du hast noch keine Favoriten.",
		"favorites.parks":         "Parks",
		"favorites.attractions":   "Attraktionen",
		"favorites.shows":         "Shows",
		"favorites.restaurants":   "Restaurants",
		"error.notFound":          "Seite nicht gefunden",
		"error.generic":           "Etwas ist schiefgelaufen. Bitte versuche es später erneut.",
	},
	"nl": {
		"site.tagline":            "Live wachttijden voor pretparken wereldwijd",
		"nav.home":                "Alle parken",
		"nav.nearby":              "In de buurt",
		"nav.favorites":           "Favorieten",
		"stale.banner":            "Live gegevens zijn tijdelijk niet beschikbaar. De laatst bekende waarden worden getoond.",
		"home.title":              "Pretparken per bestemming",
		"place.parks":             "%d parken",
		"park.attractions":        "Attracties",
		"park.waitTime":           "%d min",
		"park.noWait":             "Geen wachttijd bekend",
		"park.calendar":           "Openingskalender",
		"attraction.backToPark":   "Terug naar %s",
		"nearby.title":            "Parken bij jou in de buurt",
		"nearby.inPark":           "Je bent in %s",
		"nearby.count":            "%d parken in de buurt",
		"nearby.none":             "Geen parken in de buurt gevonden.",
		"nearby.locationRequired": "Sta locatietoegang toe of voer coördinaten in om parken in de buurt te vinden.",
		"favorites.title":         "Jouw favorieten",
		"favorites.empty":         "Je hebt nog geen favorieten.",
		"favorites.parks":         "Parken",
		"favorites.attractions":   "Attracties",
		"favorites.shows":         "Shows",
		"favorites.restaurants":   "Restaurants",
		"error.notFound":          "Pagina niet gevonden",
		"error.generic":           "Er ging iets mis. Probeer het later opnieuw.",
	},
	"fr": {
		"site.tagline":            "Temps d'attente en direct des parcs d'attractions du monde entier",
		"nav.home":                "Tous les parcs",
		"nav.nearby":              "À proximité",
		"nav.favorites":           "Favoris",
		"stale.banner":            "Les données en direct sont temporairement indisponibles. Affichage des dernières valeurs connues.",
		"home.title":              "Parcs d'attractions par destination",
		"place.parks":             "%d parcs",
		"park.attractions":        "Attractions",
		"park.waitTime":           "%d min",
		"park.noWait":             "Aucune attente signalée",
		"park.calendar":           "Calendrier d'ouverture",
		"attraction.backToPark":   "Retour à %s",
		"nearby.title":            "Parcs près de vous",
		"nearby.inPark":           "Vous êtes à %s",
		"nearby.count":            "%d parcs à proximité",
		"nearby.none":             "Aucun parc trouvé à proximité.",
		"nearby.locationRequired": "Autorisez la localisation ou saisissez des coordonnées pour trouver des parcs près de vous.",
		"favorites.title":         "Vos favoris",
		"favorites.empty":         "Vous n'avez pas encore de favoris.",
		"favorites.parks":         "Parcs",
		"favorites.attractions":   "Attractions",
		"favorites.shows":         "Spectacles",
		"favorites.restaurants":   "Restaurants",
		"error.notFound":          "Page introuvable",
		"error.generic":           "Une erreur s'est produite. Veuillez réessayer plus tard.",
	},
	"es": {
		"site.tagline":            "Tiempos de espera en directo de parques temáticos de todo el mundo",
		"nav.home":                "Todos los parques",
		"nav.nearby":              "Cerca de mí",
		"nav.favorites":           "Favoritos",
		"stale.banner":            "Los datos en directo no están disponibles temporalmente. Se muestran los últimos valores conocidos.",
		"home.title":              "Parques temáticos por destino",
		"place.parks":             "%d parques",
		"park.attractions":        "Atracciones",
		"park.waitTime":           "%d min",
		"park.noWait":             "Sin tiempo de espera",
		"park.calendar":           "Calendario de apertura",
		"attraction.backToPark":   "Volver a %s",
		"nearby.title":            "Parques cerca de ti",
		"nearby.inPark":           "Estás en %s",
		"nearby.count":            "%d parques cerca",
		"nearby.none":             "No se encontraron parques cerca.",
		"nearby.locationRequired": "Permite el acceso a la ubicación o introduce coordenadas para encontrar parques cerca de ti.",
		"favorites.title":         "Tus favoritos",
		"favorites.empty":         "Todavía no tienes favoritos.",
		"favorites.parks":         "Parques",
		"favorites.attractions":   "Atracciones",
		"favorites.shows":         "Espectáculos",
		"favorites.restaurants":   "Restaurantes",
		"error.notFound":          "Página no encontrada",
		"error.generic":           "Algo salió mal. Inténtalo de nuevo más tarde.",
	},
	"it": {
		"site.tagline":            "Tempi di attesa in diretta dei parchi divertimento di tutto il mondo",
		"nav.home":                "Tutti i parchi",
		"nav.nearby":              "Vicino a me",
		"nav.favorites":           "Preferiti",
		"stale.banner":            "I dati in diretta non sono temporaneamente disponibili. Vengono mostrati gli ultimi valori noti.",
		"home.title":              "Parchi divertimento per destinazione",
		"place.parks":             "%d parchi",
		"park.attractions":        "Attrazioni",
		"park.waitTime":           "%d min",
		"park.noWait":             "Nessuna attesa segnalata",
		"park.calendar":           "Calendario di apertura",
		"attraction.backToPark":   "Torna a %s",
		"nearby.title":            "Parchi vicino a te",
		"nearby.inPark":           "Sei a %s",
		"nearby.count":            "%d parchi nelle vicinanze",
		"nearby.none":             "Nessun parco trovato nelle vicinanze.",
		"nearby.locationRequired": "Consenti l'accesso alla posizione o inserisci le coordinate per trovare i parchi vicino a te.",
		"favorites.title":         "I tuoi preferiti",
		"favorites.empty":         "Non hai ancora preferiti.",
		"favorites.parks":         "Parchi",
		"favorites.attractions":   "Attrazioni",
		"favorites.shows":         "Spettacoli",
		"favorites.restaurants":   "Ristoranti",
		"error.notFound":          "Pagina non trovata",
		"error.generic":           "Qualcosa è andato storto. Riprova più tardi.",
	},
}

func newCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for code, msgs := range translations {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("catalog locale %q: %w", code, err)
		}
		for key, fallback := range translations[DefaultLocale] {
			msg, ok := msgs[key]
			if !ok {
				msg = fallback
			}
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("catalog %s/%s: %w", code, key, err)
			}
		}
	}
	return b, nil
}
