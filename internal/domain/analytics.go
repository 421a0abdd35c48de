package domain

// DateLayout is the day key used across analytics documents
const DateLayout = "2006-01-02"

// DailyVisits counts unique visitor IPs seen on one day
type DailyVisits struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SourceCount is the cumulative number of unique visits from one traffic source
type SourceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Analytics is the singleton visit statistics document
type Analytics struct {
	Visits         []DailyVisits       `json:"visits"`
	Sources        []SourceCount       `json:"sources"`
	UniqueVisitors map[string][]string `json:"uniqueVisitors"`
}

// DefaultAnalytics is written when no analytics document exists yet
func DefaultAnalytics() Analytics {
	return Analytics{
		Visits:         []DailyVisits{},
		Sources:        []SourceCount{},
		UniqueVisitors: map[string][]string{},
	}
}

// VisitsOn returns the visit count recorded for date
func (a *Analytics) VisitsOn(date string) int {
	for _, v := range a.Visits {
		if v.Date == date {
			return v.Count
		}
	}
	return 0
}

// AnalyticsReport is the response of GET /admin/analytics
type AnalyticsReport struct {
	Visits  []DailyVisits `json:"visits"`
	Sources []SourceCount `json:"sources"`
}

// VisitRequest describes a page view considered for tracking
type VisitRequest struct {
	IP      string
	Referer string
	Host    string
}

// Dashboard is the response of GET /admin/dashboard
type Dashboard struct {
	TotalContacts int      `json:"totalContacts"`
	TodayContacts int      `json:"todayContacts"`
	WeekContacts  int      `json:"weekContacts"`
	TodayVisits   int      `json:"todayVisits"`
	Settings      Settings `json:"settings"`
}
