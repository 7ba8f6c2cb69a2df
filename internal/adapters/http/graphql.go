package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/usecases"
)

const clientIPKey ctxKey = "client_ip"

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	attractionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Attraction",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"slug":     &graphql.Field{Type: graphql.String},
			"status":   &graphql.Field{Type: graphql.String},
			"waitTime": &graphql.Field{Type: graphql.Int},
			"distance": &graphql.Field{Type: graphql.Float},
		},
	})

	parkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Park",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"slug":            &graphql.Field{Type: graphql.String},
			"continent":       &graphql.Field{Type: graphql.String},
			"country":         &graphql.Field{Type: graphql.String},
			"city":            &graphql.Field{Type: graphql.String},
			"latitude":        &graphql.Field{Type: graphql.Float},
			"longitude":       &graphql.Field{Type: graphql.Float},
			"status":          &graphql.Field{Type: graphql.String},
			"distance":        &graphql.Field{Type: graphql.Float},
			"backgroundImage": &graphql.Field{Type: graphql.String},
			"attractions":     &graphql.Field{Type: graphql.NewList(attractionType)},
		},
	})

	nearbyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Nearby",
		Fields: graphql.Fields{
			"type":          &graphql.Field{Type: graphql.String},
			"userLatitude":  &graphql.Field{Type: graphql.Float},
			"userLongitude": &graphql.Field{Type: graphql.Float},
			"park":          &graphql.Field{Type: parkType},
			"attractions":   &graphql.Field{Type: graphql.NewList(attractionType)},
			"parks":         &graphql.Field{Type: graphql.NewList(parkType)},
			"count":         &graphql.Field{Type: graphql.Int},
		},
	})

	searchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchResult",
		Fields: graphql.Fields{
			"type":     &graphql.Field{Type: graphql.String},
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"url":      &graphql.Field{Type: graphql.String},
			"parkName": &graphql.Field{Type: graphql.String},
			"country":  &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"nearby": &graphql.Field{
				Type:        nearbyType,
				Description: "Parks around a location, or the park the location is in",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.Float},
					"lng":    &graphql.ArgumentConfig{Type: graphql.Float},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req := usecases.NearbyRequest{}
					req.ClientIP, _ = p.Context.Value(clientIPKey).(string)
					lat, okLat := p.Args["lat"].(float64)
					lng, okLng := p.Args["lng"].(float64)
					if okLat && okLng {
						req.Coordinate = &domain.Coordinate{Latitude: lat, Longitude: lng}
					}
					if r, ok := p.Args["radius"].(float64); ok {
						req.Radius = &r
					}
					if l, ok := p.Args["limit"].(int); ok {
						req.Limit = &l
					}
					res, err := deps.Nearby.Resolve(p.Context, req)
					if err != nil {
						return nil, err
					}
					return nearbyMap(res), nil
				},
			},
			"search": &graphql.Field{
				Type:        graphql.NewList(searchResultType),
				Description: "Search parks, attractions and places",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := deps.Search.Search(p.Context, p.Args["query"].(string))
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(res.Results))
					for _, r := range res.Results {
						out = append(out, map[string]interface{}{
							"type":     r.Type,
							"id":       r.ID,
							"name":     r.Name,
							"url":      r.URL,
							"parkName": r.ParkName,
							"country":  r.Country,
						})
					}
					return out, nil
				},
			},
			"park": &graphql.Field{
				Type:        parkType,
				Description: "A park with live attraction data",
				Args: graphql.FieldConfigArgument{
					"continent": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"country":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"city":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"park":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					path := domain.ParkPath{
						Continent: p.Args["continent"].(string),
						Country:   p.Args["country"].(string),
						City:      p.Args["city"].(string),
						Park:      p.Args["park"].(string),
					}
					d, err := deps.Parks.Get(p.Context, path)
					if err != nil {
						return nil, err
					}
					m := parkMap(domain.ParkWithDistance{Park: d.Park, BackgroundImage: d.BackgroundImage})
					attractions := make([]map[string]interface{}, 0, len(d.Attractions))
					for _, a := range d.Attractions {
						attractions = append(attractions, attractionMap(domain.AttractionWithDistance{Attraction: a}))
					}
					m["attractions"] = attractions
					return m, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func parkMap(p domain.ParkWithDistance) map[string]interface{} {
	m := map[string]interface{}{
		"id":        p.ID,
		"name":      p.Name,
		"slug":      p.Slug,
		"continent": p.Continent,
		"country":   p.Country,
		"city":      p.City,
		"latitude":  p.Latitude,
		"longitude": p.Longitude,
		"status":    p.Status,
		"distance":  p.Distance,
	}
	if p.BackgroundImage != nil {
		m["backgroundImage"] = *p.BackgroundImage
	}
	return m
}

func attractionMap(a domain.AttractionWithDistance) map[string]interface{} {
	m := map[string]interface{}{
		"id":     a.ID,
		"name":   a.Name,
		"slug":   a.Slug,
		"status": a.Status,
	}
	if a.WaitTime != nil {
		m["waitTime"] = *a.WaitTime
	}
	if a.Distance != nil {
		m["distance"] = *a.Distance
	}
	return m
}

func nearbyMap(r *domain.NearbyResult) map[string]interface{} {
	m := map[string]interface{}{"type": string(r.Type)}
	if r.UserLocation != nil {
		m["userLatitude"] = r.UserLocation.Latitude
		m["userLongitude"] = r.UserLocation.Longitude
	}
	switch {
	case r.InPark != nil:
		m["park"] = parkMap(r.InPark.Park)
		attractions := make([]map[string]interface{}, 0, len(r.InPark.Attractions))
		for _, a := range r.InPark.Attractions {
			attractions = append(attractions, attractionMap(a))
		}
		m["attractions"] = attractions
	case r.NearbyParks != nil:
		parks := make([]map[string]interface{}, 0, len(r.NearbyParks.Parks))
		for _, p := range r.NearbyParks.Parks {
			parks = append(parks, parkMap(p))
		}
		m["parks"] = parks
		m["count"] = r.NearbyParks.Count
	}
	return m
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		ctx := context.WithValue(c.UserContext(), clientIPKey, clientIP(c))
		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})

		c.Set(fiber.HeaderCacheControl, "private, max-age=0")
		return c.JSON(result)
	}
}
