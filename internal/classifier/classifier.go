package classifier

import (
	"strings"
)

// Asset is a tracked market segment. The set is closed and defined by the
// keyword table below; assets are configuration, never created at runtime.
type Asset string

const (
	AssetNaturalGas Asset = "NATURAL GAS"
	AssetCrudeOil   Asset = "CRUDE OIL"
	AssetSilver     Asset = "SILVER / METALS"
	AssetNifty      Asset = "NIFTY / NSE"
	AssetSensex     Asset = "SENSEX / BSE"
	AssetBanking    Asset = "BANKING SECTOR"
	AssetIT         Asset = "IT SECTOR"
	AssetRBIPolicy  Asset = "RBI POLICY"
	AssetIndiaMacro Asset = "INDIA CPI / GDP"
	AssetFedPolicy  Asset = "FED POLICY"
	AssetUSMacro    Asset = "US CPI / GDP"
	AssetElections  Asset = "ELECTION NEWS"
)

// assetKeywords pairs an asset with its trigger keywords. Slice order is the
// tie-break: the first asset with any matching keyword wins, so the table must
// stay an ordered slice, not a map.
type assetKeywords struct {
	asset    Asset
	keywords []string
}

var assetTable = []assetKeywords{
	{AssetNaturalGas, []string{"natural gas", "lng"}},
	{AssetCrudeOil, []string{"crude", "oil", "brent", "wti", "opec"}},
	{AssetSilver, []string{"silver", "gold", "bullion"}},
	{AssetNifty, []string{"nifty", "nse"}},
	{AssetSensex, []string{"sensex", "bse"}},
	{AssetBanking, []string{"bank nifty", "bank stocks"}},
	{AssetIT, []string{"infosys", "tcs", "wipro"}},
	{AssetRBIPolicy, []string{"rbi", "repo rate"}},
	{AssetIndiaMacro, []string{"india inflation", "india gdp"}},
	{AssetFedPolicy, []string{"federal reserve", "fomc", "powell"}},
	{AssetUSMacro, []string{"us inflation", "us gdp", "nonfarm payrolls"}},
	{AssetElections, []string{"election", "lok sabha", "senate"}},
}

var bullishKeywords = []string{
	"surge", "rally", "jump", "gain", "rise", "record high",
	"beats estimates", "upgrade", "draw", "output cut", "stimulus",
}

var bearishKeywords = []string{
	"fall", "drop", "decline", "crash", "plunge", "slump",
	"selloff", "miss", "build", "hike", "downgrade", "sanction",
}

var highImpactKeywords = []string{
	"cpi", "inflation", "gdp", "rate decision",
	"repo rate", "fomc", "inventory",
	"nonfarm payrolls", "election results",
}

// Result is the classification of a single title
type Result struct {
	Asset      Asset
	Matched    bool
	Delta      int
	HighImpact bool
}

// Classify maps a title to an asset tag, a sentiment delta and a high-impact
// flag. Pure function of the title and the static tables.
func Classify(title string) Result {
	text := strings.ToLower(title)

	res := Result{}

	for _, entry := range assetTable {
		if containsAny(text, entry.keywords) {
			res.Asset = entry.asset
			res.Matched = true
			break
		}
	}

	if containsAny(text, bullishKeywords) {
		res.Delta++
	}
	if containsAny(text, bearishKeywords) {
		res.Delta--
	}

	res.HighImpact = containsAny(text, highImpactKeywords)

	return res
}

// Assets returns all known assets in table order
func Assets() []Asset {
	assets := make([]Asset, 0, len(assetTable))
	for _, entry := range assetTable {
		assets = append(assets, entry.asset)
	}
	return assets
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
