package graphql

import (
	"encoding/base64"
	"fmt"

	"github.com/graphql-go/graphql"
)

func encodeCursor(index int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("cursor:%d", index)))
}

// decodeCursor decodes a base64 cursor to an index
func decodeCursor(cursor string) (int, error) {
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor encoding: %w", err)
	}
	var index int
	if _, err := fmt.Sscanf(string(decoded), "cursor:%d", &index); err != nil {
		return 0, fmt.Errorf("invalid cursor format: %w", err)
	}
	return index, nil
}

// connection is the resolved value of an EsConnection query
type connection struct {
	Edges      []edge
	PageInfo   pageInfo
	TotalCount int
}

type edge struct {
	Node   Record
	Cursor string
}

type pageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     string
	EndCursor       string
}

// newConnection pages records after the cursor index start
func newConnection(records []Record, start, limit int) connection {
	window := page(records, start, limit)
	c := connection{TotalCount: len(records), Edges: make([]edge, len(window))}
	for i, r := range window {
		c.Edges[i] = edge{Node: r, Cursor: encodeCursor(start + i + 1)}
	}
	c.PageInfo.HasPreviousPage = start > 0
	c.PageInfo.HasNextPage = start+len(window) < len(records)
	if len(window) > 0 {
		c.PageInfo.StartCursor = c.Edges[0].Cursor
		c.PageInfo.EndCursor = c.Edges[len(window)-1].Cursor
	}
	return c
}

func createPageInfoType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(pageInfo).HasNextPage, nil
				},
			},
			"hasPreviousPage": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(pageInfo).HasPreviousPage, nil
				},
			},
			"startCursor": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(pageInfo).StartCursor, nil
				},
			},
			"endCursor": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(pageInfo).EndCursor, nil
				},
			},
		},
	})
}

func createConnectionTypes(typeName, connectionName string, nodeType *graphql.Object, pageInfoType *graphql.Object) *graphql.Object {
	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name: typeName + "Edge",
		Fields: graphql.Fields{
			"node": &graphql.Field{
				Type: graphql.NewNonNull(nodeType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(edge).Node, nil
				},
			},
			"cursor": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(edge).Cursor, nil
				},
			},
		},
	})
	return graphql.NewObject(graphql.ObjectConfig{
		Name: connectionName,
		Fields: graphql.Fields{
			"edges": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(edgeType))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(connection).Edges, nil
				},
			},
			"pageInfo": &graphql.Field{
				Type: graphql.NewNonNull(pageInfoType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(connection).PageInfo, nil
				},
			},
			"totalCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(connection).TotalCount, nil
				},
			},
		},
	})
}
