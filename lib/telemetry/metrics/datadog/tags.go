package datadog

import (
	"fmt"
)

func getTags(tags any) []string {
	if tags == nil {
		return []string{}
	}

	switch castTags := tags.(type) {
	case []string:
		return castTags
	case []any:
		var retTags []string
		for _, tag := range castTags {
			retTags = append(retTags, fmt.Sprint(tag))
		}
		return retTags
	}

	return []string{}
}

func toDatadogTags(tags map[string]string) []string {
	var retTags []string
	for key, val := range tags {
		retTags = append(retTags, fmt.Sprintf("%s:%s", key, val))
	}

	return retTags
}
