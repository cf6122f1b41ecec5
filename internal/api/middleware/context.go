package middleware

type contextKey string
