package conf

type ContextKey int

// UserKey carries the authenticated *model.User on the request context.
const UserKey ContextKey = iota
