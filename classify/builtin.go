package classify

// DefaultBlockedKeys are never translated, whatever the rules say. Matching
// is case-insensitive.
var DefaultBlockedKeys = []string{
	"api_key", "apikey", "id", "_id", "uuid", "guid",
	"url", "urls", "old_urls", "slug", "href", "src",
	"password", "secret", "token", "access_token", "refresh_token",
	"hash", "checksum",
	"created_at", "updated_at", "deleted_at", "timestamp",
	"lat", "lng", "latitude", "longitude",
	"email", "phone", "locale", "lang", "currency",
	"color", "colour", "sku", "key", "code",
}

// DefaultRules is the global rule set applied after every tenant's rules.
func DefaultRules() []Rule {
	return []Rule{
		// Keys
		{ID: "key-ids", Match: KeyPattern, Pattern: `(?i:(?:^|[_\-.])(?:id|ids|uuid|guid))$|[a-z](?:Id|ID|Ids|IDs)$`},
		{ID: "key-timestamps", Match: KeyPattern, Pattern: `(?i:(?:_at|_on|_date|_time)$|^(?:created|updated|modified|deleted|published|expires)(?:_|$))|[a-z](?:At|On)$`},
		{ID: "key-links", Match: KeyPattern, Pattern: `(?i)(?:^|_)(?:url|uri|href|src|link|path|slug|endpoint|permalink)s?$`},
		{ID: "key-secrets", Match: KeyPattern, Pattern: `(?i)(?:api_?key|secret|token|password|passwd|hash|checksum|signature)`},
		{ID: "key-colors", Match: KeyPattern, Pattern: `(?i)(?:^|_)(?:color|colour|hex|rgb|rgba)$`},
		{ID: "key-geo", Match: KeyPattern, Pattern: `(?i)^(?:lat|lng|lon|latitude|longitude|coords?|coordinates|geo)$`},
		{ID: "key-flags", Match: KeyPattern, Pattern: `^(?:is|has|can|should)(?:_|[A-Z])`},
		{ID: "key-codes", Match: KeyPattern, Pattern: `(?i)(?:^|_)(?:code|sku|isbn|ean|currency|locale|lang|language_code|timezone|tz|mime|mime_type|format|version)$`},
		{ID: "key-contact", Match: KeyPattern, Pattern: `(?i)(?:^|_)(?:email|e_mail|phone|tel|telephone|fax|mobile)$`},
		{ID: "key-media", Match: KeyPattern, Pattern: `(?i)(?:^|_)(?:icon|image|img|thumbnail|thumb|avatar|logo|photo|video|file|filename)s?$`},
		{ID: "key-config", Match: KeyPattern, Pattern: `(?i)(?:^|_)(?:config|configuration|setting|settings|env|debug)$`},

		// Values
		{ID: "value-currency", Match: ValuePattern, Pattern: `^\s*[$€£¥₹₩₽¢]\s?\d[\d,.\s]*(?:\s*[-–~]\s*[$€£¥₹₩₽¢]?\s?\d[\d,.]*)?\s*$`},
		{ID: "value-currency-code", Match: ValuePattern, Pattern: `^\s*\d[\d,.]*\s?(?:USD|EUR|GBP|JPY|INR|CNY|AUD|CAD|CHF)\s*$`},
		{ID: "value-iso-date", Match: ValuePattern, Pattern: `^\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:?\d{2})?)?$`},
		{ID: "value-hex-color", Match: ValuePattern, Pattern: `^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`},
		{ID: "value-css-color", Match: ValuePattern, Pattern: `(?i)^(?:rgba?|hsla?)\([^)]*\)$`},
		{ID: "value-css-unit", Match: ValuePattern, Pattern: `^-?\d+(?:\.\d+)?(?:px|em|rem|vh|vw|vmin|vmax|%|pt|pc|cm|mm|in|ex|ch|fr|deg|ms|s)$`},
		{ID: "value-email", Match: ValuePattern, Pattern: `^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`},
		{ID: "value-phone", Match: ValuePattern, Pattern: `^\+?\(?\d[\d\s().-]{5,18}\d$`},
		{ID: "value-url", Match: ValuePattern, Pattern: `(?i)^(?:(?:https?|ftp)://|www\.)\S+$`},
		{ID: "value-path", Match: ValuePattern, Pattern: `^/[A-Za-z0-9_\-./]*$`},
		{ID: "value-number", Match: ValuePattern, Pattern: `^\s*[-+]?\d+(?:[.,]\d+)*\s*$`},
		{ID: "value-uuid", Match: ContentType, Pattern: "uuid"},
		{ID: "value-date", Match: ContentType, Pattern: "date"},
		{ID: "value-markup", Match: ContentType, Pattern: "markup"},
	}
}

// DefaultFormattingRules mark values whose placeholders and tags need
// protecting. They are consulted by ShouldPreserveFormatting after every
// other rule and never decide whether a value is translated.
func DefaultFormattingRules() []Rule {
	return []Rule{
		{ID: "value-html", Match: ContentType, Pattern: "html", Action: Translate, PreserveFormatting: true},
		{ID: "value-template", Match: ContentType, Pattern: "template", Action: Translate, PreserveFormatting: true},
	}
}
