package graph

import (
	"github.com/graphql-go/graphql"
)

// NewSchema wires Query, Mutation and Subscription onto the resolver. Field
// and argument names are the API surface; renaming any of them breaks clients.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"username":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"favoriteGenre": &graphql.Field{Type: graphql.String},
			"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
	})

	tokenType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Token",
		Fields: graphql.Fields{
			"value": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	authorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Author",
		Fields: graphql.Fields{
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"born":      &graphql.Field{Type: graphql.Int},
			"bookCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
	})

	bookType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Book",
		Fields: graphql.Fields{
			"title":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"published": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"author":    &graphql.Field{Type: graphql.NewNonNull(authorType)},
			"genres":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"bookCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.BookCount(p.Context)
				},
			},
			"authorCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.AuthorCount(p.Context)
				},
			},
			"allBooks": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(bookType))),
				Args: graphql.FieldConfigArgument{
					"author": &graphql.ArgumentConfig{Type: graphql.String},
					"genre":  &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.AllBooks(p.Context, argString(p, "author"), argString(p, "genre"))
				},
			},
			"allAuthors": &graphql.Field{
				Type: graphql.NewList(authorType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.AllAuthors(p.Context)
				},
			},
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Me(p.Context)
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"username":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"favoriteGenre": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.CreateUser(p.Context, argString(p, "username"), argString(p, "favoriteGenre"))
				},
			},
			"login": &graphql.Field{
				Type: tokenType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Login(p.Context, argString(p, "username"), argString(p, "password"))
				},
			},
			"addBook": &graphql.Field{
				Type: bookType,
				Args: graphql.FieldConfigArgument{
					"title":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"author":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"published": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"genres":    &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.AddBook(p.Context, AddBookInput{
						Title:     argString(p, "title"),
						Author:    argString(p, "author"),
						Published: argInt(p, "published"),
						Genres:    argStrings(p, "genres"),
					})
				},
			},
			"editAuthor": &graphql.Field{
				Type: authorType,
				Args: graphql.FieldConfigArgument{
					"name":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"setBornTo": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.EditAuthor(p.Context, argString(p, "name"), argInt(p, "setBornTo"))
				},
			},
		},
	})

	subscription := graphql.NewObject(graphql.ObjectConfig{
		Name: "Subscription",
		Fields: graphql.Fields{
			"bookAdded": &graphql.Field{
				Type: graphql.NewNonNull(bookType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source, nil
				},
				Subscribe: func(p graphql.ResolveParams) (interface{}, error) {
					return r.SubscribeBookAdded(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:        query,
		Mutation:     mutation,
		Subscription: subscription,
	})
}

func argString(p graphql.ResolveParams, name string) string {
	if v, ok := p.Args[name].(string); ok {
		return v
	}
	return ""
}

func argInt(p graphql.ResolveParams, name string) int {
	if v, ok := p.Args[name].(int); ok {
		return v
	}
	return 0
}

func argStrings(p graphql.ResolveParams, name string) []string {
	raw, ok := p.Args[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
