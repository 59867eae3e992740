package domain

const (
	// Special event names handled by the events processor
	EVENT_IDENTIFY       = "$identify"
	EVENT_CREATE_ALIAS   = "$create_alias"
	EVENT_GROUP_IDENTIFY = "$groupidentify"

	// Property keys carrying person and group updates
	PROPERTY_SET             = "$set"
	PROPERTY_SET_ONCE        = "$set_once"
	PROPERTY_GROUP_SET       = "$group_set"
	PROPERTY_GROUP_TYPE      = "$group_type"
	PROPERTY_GROUP_KEY       = "$group_key"
	PROPERTY_ANON_DISTINCT   = "$anon_distinct_id"
	PROPERTY_ALIAS           = "alias"
	PROPERTY_ELEMENTS        = "$elements"
	PROPERTY_IS_IDENTIFIED   = "$is_identified"
	MAX_GROUP_TYPES_PER_TEAM = 5

	// DEAD_LETTER_ERROR_LOCATION identifies where a dead-lettered event failed
	DEAD_LETTER_ERROR_LOCATION = "plugin_server_ingest_event"
)
