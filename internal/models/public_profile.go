package models

type PublicProfile struct {
	EntityID   string  `json:"entity_id"`
	EntityType string  `json:"entity_type"`
	Name       string  `json:"name"`
	Avatar     *string `json:"avatar"`
	Bio        *string `json:"bio"`
}
