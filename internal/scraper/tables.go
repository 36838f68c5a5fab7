package scraper

import "strings"

// Hebrew month abbreviations used in fixture dates
var months = map[string]int{
	"ינו": 1,
	"פבר": 2,
	"מרץ": 3,
	"אפר": 4,
	"מאי": 5,
	"יונ": 6,
	"יול": 7,
	"אוג": 8,
	"ספט": 9,
	"אוק": 10,
	"נוב": 11,
	"דצמ": 12,
}

var stadiums = map[string]string{
	"בלומפילד":          "אצטדיון בלומפילד",
	"נתניה":             "אצטדיון עירוני נתניה",
	"אצטדיון נתניה":     "אצטדיון עירוני נתניה",
	"טדי":               "אצטדיון טדי",
	`הי"א`:              `איצטדיון עירוני הי"א`,
	"היא באשדוד":        `איצטדיון עירוני הי"א`,
	"אשדוד":             `איצטדיון עירוני הי"א`,
	"סמי עופר":          "אצטדיון סמי עופר",
	"טרנר":              "אצטדיון טרנר",
	"טוטו טרנר":         "אצטדיון טרנר",
	"קריית שמונה":       "אצטדיון כדורגל קרית שמונה",
	"המושבה":            "אצטדיון המושבה",
	"שלמה ביטוח":        "אצטדיון המושבה",
	"דוחא":              "אצטדיון דוחה",
	"גרין":              "אצטדיון גרין",
	"רמת גן":            "אצטדיון רמת גן",
	"טוטו עכו":          "אצטדיון טוטו עכו",
	"טוטו - עכו":        "אצטדיון טוטו עכו",
	"עכו":               "אצטדיון טוטו עכו",
	"אצטדיון עכו":       "אצטדיון טוטו עכו",
	"סלה":               "אצטדיון סלה",
	"איצטדיון פרטיזן":   "איצטדיון פרטיזן",
	"יוהאן קרויף ארינה": "יוהאן קרויף ארינה",
}

// Sponsor names of the top division all map to one competition name
var competitions = map[string]string{
	"ליגת הבורסה לניירות ערך":     "ליגת העל",
	"ליגת Winner":                 "ליגת העל",
	"ליגת WINNER":                 "ליגת העל",
	"ליגת one zero הבנק הדיגיטלי": "ליגת העל",
	"ליגת ג׳פניקה":                "ליגת העל",
}

// Channel logos on the match page, keyed by image URL
var channels = map[string]string{
	"https://static.maccabi-tlv.co.il/wp-content/uploads/2015/11/1949-300x62.png":                                                "ספורט1",
	"https://static.maccabi-tlv.co.il/wp-content/uploads/2023/07/MTA_202307161102372351947d86ebda6f4ca21f9a1b925c63-300x81.png": "ספורט1",
	"https://static.maccabi-tlv.co.il/wp-content/uploads/2023/07/MTA_202307161101594c354ace1560ac3c93356ce1816e2a21-300x78.png": "ספורט2",
	"https://static.maccabi-tlv.co.il/wp-content/uploads/2023/07/MTA_20230716110202545b088a9368be6285a53e59da64259d-300x78.png": "ספורט3",
	"https://static.maccabi-tlv.co.il/wp-content/uploads/2023/07/MTA_202307161101541f9bda37ca4f08fc779a8421e22a973a-300x77.png": "ספורט4",
	"https://static.maccabi-tlv.co.il/wp-content/uploads/2015/11/sport-chanel.png":                                               "ערוץ הספורט",
}

// monthNumber accepts full month names as well as the three letter form
func monthNumber(name string) (int, bool) {
	r := []rune(strings.TrimSpace(name))
	if len(r) > 3 {
		r = r[:3]
	}
	n, ok := months[string(r)]
	return n, ok
}

// stadiumName returns the canonical stadium name. Unknown venues are kept as
// printed on the site.
func stadiumName(venue string) string {
	venue = strings.TrimSpace(venue)
	if name, ok := stadiums[venue]; ok {
		return name
	}
	if first, _, found := strings.Cut(venue, " "); found {
		if name, ok := stadiums[first]; ok {
			return name
		}
	}
	return venue
}

func competitionName(league string) string {
	league = strings.TrimSpace(league)
	if name, ok := competitions[league]; ok {
		return name
	}
	return league
}

func channelName(logo string) string {
	return channels[strings.TrimSpace(logo)]
}
