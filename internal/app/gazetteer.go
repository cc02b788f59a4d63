package app

import "strings"

// regionEntry keeps the gazetteer in declaration order; Detect scans it
// top-to-bottom and the first prefecture whose name appears in the address
// wins. This is deliberate substring matching, not geocoding.
type regionEntry struct {
	Region      string
	Prefectures []string
}

var gazetteer = []regionEntry{
	{"Hokkaido", []string{"Hokkaido"}},
	{"Tohoku", []string{"Aomori", "Iwate", "Miyagi", "Akita", "Yamagata", "Fukushima"}},
	{"Kanto", []string{"Tokio", "Tokyo", "Kanagawa", "Yokohama", "Chiba", "Saitama", "Ibaraki", "Tochigi", "Gunma"}},
	{"Chubu", []string{"Aichi", "Nagoya", "Shizuoka", "Gifu", "Nagano", "Yamanashi", "Niigata", "Toyama", "Ishikawa", "Kanazawa", "Fukui"}},
	{"Kansai", []string{"Kyoto", "Osaka", "Nara", "Hyogo", "Kobe", "Shiga", "Wakayama", "Mie"}},
	{"Chugoku", []string{"Hiroshima", "Okayama", "Tottori", "Shimane", "Yamaguchi"}},
	{"Shikoku", []string{"Kagawa", "Ehime", "Tokushima", "Kochi"}},
	{"Kyushu", []string{"Fukuoka", "Nagasaki", "Kumamoto", "Oita", "Miyazaki", "Saga", "Kagoshima"}},
	{"Okinawa", []string{"Okinawa", "Naha"}},
}

const (
	defaultRegion     = "Kanto"
	defaultPrefecture = "Tokio"
)

// DetectLocation resolves a free-text address to a (region, prefecture) pair.
// Pure function of the gazetteer and the address; unknown addresses get the
// fixed default pair.
func DetectLocation(address string) (region, prefecture string) {
	for _, re := range gazetteer {
		for _, pref := range re.Prefectures {
			if strings.Contains(address, pref) {
				return re.Region, canonicalPrefecture(pref)
			}
		}
	}
	return defaultRegion, defaultPrefecture
}

// canonicalPrefecture folds city aliases and spelling variants onto the
// prefecture name the catalog stores.
func canonicalPrefecture(name string) string {
	switch name {
	case "Tokyo":
		return "Tokio"
	case "Yokohama":
		return "Kanagawa"
	case "Nagoya":
		return "Aichi"
	case "Kanazawa":
		return "Ishikawa"
	case "Kobe":
		return "Hyogo"
	case "Naha":
		return "Okinawa"
	}
	return name
}

// PrefectureRegion returns the region a known prefecture belongs to, with
// ok=false for names outside the gazetteer.
func PrefectureRegion(prefecture string) (string, bool) {
	for _, re := range gazetteer {
		for _, pref := range re.Prefectures {
			if canonicalPrefecture(pref) == prefecture {
				return re.Region, true
			}
		}
	}
	return "", false
}
