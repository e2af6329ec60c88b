package models

// Key builds the bucket key for a class and client identifier.
func Key(class EndpointClass, identifier string) string {
	return "rl:" + string(class) + ":" + identifier
}
