package graph

// Resolver errors surface in the GraphQL `errors` array with an extensions
// code. invalidArgs echoes the offending arguments back for client display.

type apiError struct {
	message string
	code    string
	extra   map[string]interface{}
}

func (e *apiError) Error() string { return e.message }

func (e *apiError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.code}
	for k, v := range e.extra {
		ext[k] = v
	}
	return ext
}

func errNotAuthenticated() error {
	return &apiError{message: "not authenticated", code: "UNAUTHENTICATED"}
}

// errWrongCredentials is deliberately the same for an unknown user and a bad
// password, so login can't be used to enumerate usernames.
func errWrongCredentials() error {
	return &apiError{message: "wrong credentials", code: "BAD_USER_INPUT"}
}

func errUserInput(msg string, invalidArgs map[string]interface{}) error {
	return &apiError{
		message: msg,
		code:    "BAD_USER_INPUT",
		extra:   map[string]interface{}{"invalidArgs": invalidArgs},
	}
}
