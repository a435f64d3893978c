package rules

// DefaultConfig returns the stock rule data: the phrase lists and thresholds
// tuned against the messaging platform's spam heuristics. Callers with
// market-specific lists supply their own Config instead.
func DefaultConfig() Config {
	return Config{
		BannedPhrases: []string{
			"limited time",
			"act now",
			"hurry",
			"last chance",
			"going fast",
			"don't miss",
			"once in a lifetime",
			"exclusive offer",
			"urgent sale",
			"fire sale",
			"blowout",
			"clearance",
			"must sell today",
			"price slashed",
			"below market",
			"steal",
			"unbelievable price",
			"you won't believe",
			"guaranteed authentic",
			"100% genuine",
			"certified authentic",
			"investment grade",
			"financial freedom",
			"get rich",
			"earn money",
			"passive income",
			"no lowballers",
			"no tire kickers",
			"serious buyers only",
			"price is firm",
		},
		WarningPhrases: []string{
			"dm for price",
			"message for price",
			"whatsapp for price",
			"contact for price",
			"call me at",
			"text me at",
			"email me at",
			"send offer",
			"make offer",
			"best offer",
		},
		Replacements: map[string]string{
			"limited time":         "available",
			"act now":              "inquire today",
			"hurry":                "",
			"last chance":          "opportunity",
			"going fast":           "available",
			"don't miss":           "consider",
			"urgent sale":          "available",
			"fire sale":            "priced to sell",
			"steal":                "great value",
			"unbelievable price":   "competitive price",
			"guaranteed authentic": "authentic",
			"100% genuine":         "genuine",
			"investment grade":     "collectible",
			"no lowballers":        "serious inquiries",
			"price is firm":        "price reflects market value",
		},
		Limits: Limits{
			MaxEmojis:       3,
			MaxExclamations: 2,
			MaxPerHour:      50,
			MaxPerDay:       200,
			SafePerHour:     30,
			SafePerDay:      100,
		},
	}
}

// Default returns a compiled Set built from DefaultConfig. The stock data is
// known-valid, so construction cannot fail.
func Default() *Set {
	set, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return set
}
