package domain

import "strings"

// CategoryGroup объединяет несколько категорий лент под одним разделом сайта.
type CategoryGroup struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
}

const defaultGroupID = "business-general"

var categoryGroups = []CategoryGroup{
	{
		ID:          "faith-church",
		Name:        "Faith & Church",
		Description: "Church news, theology, and spiritual content",
		Categories: []string{
			"church", "catholic", "orthodox", "methodist", "episcopal",
			"lutheran", "ucc", "adventist", "pentecostal", "faith",
			"theology", "prayer", "bible-study",
		},
	},
	{
		ID:          "ministry-service",
		Name:        "Ministry & Service",
		Description: "Outreach, missions, and Christian service",
		Categories: []string{
			"ministry", "missions", "youth", "orphan-care", "social-justice",
			"apologetics", "spiritual-warfare", "teaching",
		},
	},
	{
		ID:          "global-politics",
		Name:        "Global & Politics",
		Description: "World news, politics, and international events",
		Categories:  []string{"world", "israel", "regional", "us", "politics", "entertainment"},
	},
	{
		ID:          "lifestyle-culture",
		Name:        "Lifestyle & Culture",
		Description: "Family, health, culture, and daily living",
		Categories:  []string{"family", "lifestyle", "health", "culture", "music", "writing"},
	},
	{
		ID:          defaultGroupID,
		Name:        "Business & General",
		Description: "Finance, research, and general news",
		Categories:  []string{"finance", "research", "news", "default"},
	},
}

// CategoryGroups возвращает копию списка групп категорий.
func CategoryGroups() []CategoryGroup {
	out := make([]CategoryGroup, len(categoryGroups))
	copy(out, categoryGroups)
	return out
}

// GroupForCategory возвращает группу, к которой относится категория.
// Неизвестные категории попадают в группу business-general.
func GroupForCategory(category string) CategoryGroup {
	normalized := strings.ToLower(strings.TrimSpace(category))
	var fallback CategoryGroup
	for _, g := range categoryGroups {
		if g.ID == defaultGroupID {
			fallback = g
		}
		for _, c := range g.Categories {
			if c == normalized {
				return g
			}
		}
	}
	return fallback
}

// HasGroup сообщает, существует ли группа с указанным идентификатором.
func HasGroup(id string) bool {
	for _, g := range categoryGroups {
		if g.ID == id {
			return true
		}
	}
	return false
}
