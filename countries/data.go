package countries

// Country is the external data contract of the Question Provider.
type Country struct {
	Name   string
	Flag   string
	Code   string
	Region string
}

// catalogue is a small embedded dataset. The real flag/country dataset
// and distractor selector are meant to be an external collaborator;
// this is the thin stand-in that satisfies the Provider interface.
var catalogue = []Country{
	{"France", "🇫🇷", "FR", "Europe"},
	{"Germany", "🇩🇪", "DE", "Europe"},
	{"Italy", "🇮🇹", "IT", "Europe"},
	{"Spain", "🇪🇸", "ES", "Europe"},
	{"Portugal", "🇵🇹", "PT", "Europe"},
	{"Netherlands", "🇳🇱", "NL", "Europe"},
	{"Belgium", "🇧🇪", "BE", "Europe"},
	{"Switzerland", "🇨🇭", "CH", "Europe"},
	{"Austria", "🇦🇹", "AT", "Europe"},
	{"Poland", "🇵🇱", "PL", "Europe"},
	{"Sweden", "🇸🇪", "SE", "Europe"},
	{"Norway", "🇳🇴", "NO", "Europe"},
	{"Denmark", "🇩🇰", "DK", "Europe"},
	{"Finland", "🇫🇮", "FI", "Europe"},
	{"Greece", "🇬🇷", "GR", "Europe"},
	{"Ireland", "🇮🇪", "IE", "Europe"},
	{"United States", "🇺🇸", "US", "Americas"},
	{"Canada", "🇨🇦", "CA", "Americas"},
	{"Mexico", "🇲🇽", "MX", "Americas"},
	{"Brazil", "🇧🇷", "BR", "Americas"},
	{"Argentina", "🇦🇷", "AR", "Americas"},
	{"Chile", "🇨🇱", "CL", "Americas"},
	{"Colombia", "🇨🇴", "CO", "Americas"},
	{"Peru", "🇵🇪", "PE", "Americas"},
	{"Japan", "🇯🇵", "JP", "Asia"},
	{"China", "🇨🇳", "CN", "Asia"},
	{"South Korea", "🇰🇷", "KR", "Asia"},
	{"India", "🇮🇳", "IN", "Asia"},
	{"Thailand", "🇹🇭", "TH", "Asia"},
	{"Vietnam", "🇻🇳", "VN", "Asia"},
	{"Indonesia", "🇮🇩", "ID", "Asia"},
	{"Philippines", "🇵🇭", "PH", "Asia"},
	{"Egypt", "🇪🇬", "EG", "Africa"},
	{"Nigeria", "🇳🇬", "NG", "Africa"},
	{"Kenya", "🇰🇪", "KE", "Africa"},
	{"South Africa", "🇿🇦", "ZA", "Africa"},
	{"Morocco", "🇲🇦", "MA", "Africa"},
	{"Ghana", "🇬🇭", "GH", "Africa"},
	{"Australia", "🇦🇺", "AU", "Oceania"},
	{"New Zealand", "🇳🇿", "NZ", "Oceania"},
}
