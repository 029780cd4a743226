// Package queries builds the fixed query documents behind each report.
// Builders are pure: every call returns a fresh document and nothing here
// performs I/O. Relative times such as "now-24h" are resolved by the datastore.
package queries

const (
	DefaultIndexPattern = "wazuh-alerts-*"

	TimestampField = "@timestamp"
	SeverityField  = "rule.level"
	SourceIPField  = "data.srcip"
	MitreField     = "rule.mitre.id"
	HostField      = "agent.name.keyword"
	RuleGroupField = "rule.groups"

	WindowStart = "now-24h"
	WindowEnd   = "now"

	CriticalLevel     = 12
	TimelineInterval  = "1h"
	TopN              = 10
	AuthFailedRuleTag = "authentication_failed"
)

// Aggregation names read back from aggregations.<name>.buckets.
const (
	AggSeverity  = "severity"
	AggTimeline  = "timeline"
	AggAttackers = "attackers"
	AggMitre     = "mitre"
	AggHosts     = "hosts"
	AggSources   = "sources"
)

// Kind selects the datastore endpoint a query is sent to.
type Kind string

const (
	KindSearch Kind = "search"
	KindCount  Kind = "count"
)

// Query is one request to send. Body is nil for an unfiltered count.
// Aggregation is empty for counts.
type Query struct {
	Kind        Kind
	Body        map[string]interface{}
	Aggregation string
}

func last24h() map[string]interface{} {
	return map[string]interface{}{
		"range": map[string]interface{}{
			TimestampField: map[string]interface{}{
				"gte": WindowStart,
				"lte": WindowEnd,
			},
		},
	}
}

func termsAgg(name, field string, size int) map[string]interface{} {
	return map[string]interface{}{
		name: map[string]interface{}{
			"terms": map[string]interface{}{
				"field": field,
				"size":  size,
			},
		},
	}
}

// AlertsLast24h counts alerts with @timestamp in [now-24h, now].
func AlertsLast24h() Query {
	return Query{
		Kind: KindCount,
		Body: map[string]interface{}{"query": last24h()},
	}
}

// AlertsAllTime counts every alert. It is sent without a body.
func AlertsAllTime() Query {
	return Query{Kind: KindCount}
}

// Severity groups alerts by rule level, highest level first.
func Severity() Query {
	return Query{
		Kind:        KindSearch,
		Aggregation: AggSeverity,
		Body: map[string]interface{}{
			"size": 0,
			"aggs": map[string]interface{}{
				AggSeverity: map[string]interface{}{
					"terms": map[string]interface{}{
						"field": SeverityField,
						"order": map[string]interface{}{"_key": "desc"},
					},
				},
			},
		},
	}
}

// Critical counts alerts at or above CriticalLevel.
func Critical() Query {
	return Query{
		Kind: KindCount,
		Body: map[string]interface{}{
			"query": map[string]interface{}{
				"range": map[string]interface{}{
					SeverityField: map[string]interface{}{"gte": CriticalLevel},
				},
			},
		},
	}
}

// Timeline buckets the last 24 hours of alerts by hour.
func Timeline() Query {
	return Query{
		Kind:        KindSearch,
		Aggregation: AggTimeline,
		Body: map[string]interface{}{
			"size":  0,
			"query": last24h(),
			"aggs": map[string]interface{}{
				AggTimeline: map[string]interface{}{
					"date_histogram": map[string]interface{}{
						"field":          TimestampField,
						"fixed_interval": TimelineInterval,
					},
				},
			},
		},
	}
}

func TopAttackers() Query {
	return Query{
		Kind:        KindSearch,
		Aggregation: AggAttackers,
		Body: map[string]interface{}{
			"size": 0,
			"aggs": termsAgg(AggAttackers, SourceIPField, TopN),
		},
	}
}

func MitreTechniques() Query {
	return Query{
		Kind:        KindSearch,
		Aggregation: AggMitre,
		Body: map[string]interface{}{
			"size": 0,
			"aggs": termsAgg(AggMitre, MitreField, TopN),
		},
	}
}

func TopHosts() Query {
	return Query{
		Kind:        KindSearch,
		Aggregation: AggHosts,
		Body: map[string]interface{}{
			"size": 0,
			"aggs": termsAgg(AggHosts, HostField, TopN),
		},
	}
}

// FailedLogins ranks source IPs of alerts tagged authentication_failed.
func FailedLogins() Query {
	return Query{
		Kind:        KindSearch,
		Aggregation: AggSources,
		Body: map[string]interface{}{
			"size": 0,
			"query": map[string]interface{}{
				"match": map[string]interface{}{
					RuleGroupField: AuthFailedRuleTag,
				},
			},
			"aggs": termsAgg(AggSources, SourceIPField, TopN),
		},
	}
}
