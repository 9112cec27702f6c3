package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

// buildSchema creates the read-only GraphQL schema wired to our services.
// Field names follow the JSON names of the REST responses.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	optionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteOption",
		Fields: graphql.Fields{
			"index":              &graphql.Field{Type: graphql.Int},
			"bearing":            &graphql.Field{Type: graphql.Float},
			"distance_km":        &graphql.Field{Type: graphql.Float},
			"estimated_duration": &graphql.Field{Type: graphql.String},
			"waypoints":          &graphql.Field{Type: graphql.NewList(geoPointType)},
			"path":               &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	planType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Plan",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"state":          &graphql.Field{Type: graphql.String},
			"origin":         &graphql.Field{Type: geoPointType},
			"target_km":      &graphql.Field{Type: graphql.Float},
			"generation":     &graphql.Field{Type: graphql.Int},
			"options":        &graphql.Field{Type: graphql.NewList(optionType)},
			"selected":       &graphql.Field{Type: graphql.Int},
			"route":          &graphql.Field{Type: optionType},
			"headline_km":    &graphql.Field{Type: graphql.Float},
			"pace":           &graphql.Field{Type: graphql.String},
			"saved_route_id": &graphql.Field{Type: graphql.String},
			"message":        &graphql.Field{Type: graphql.String},
		},
	})

	savedRouteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SavedRoute",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"origin":      &graphql.Field{Type: geoPointType},
			"waypoints":   &graphql.Field{Type: graphql.NewList(geoPointType)},
			"path":        &graphql.Field{Type: graphql.NewList(geoPointType)},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	weatherType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Weather",
		Fields: graphql.Fields{
			"location":       &graphql.Field{Type: geoPointType},
			"temperature_c":  &graphql.Field{Type: graphql.Float},
			"wind_speed_kmh": &graphql.Field{Type: graphql.Float},
			"weather_code":   &graphql.Field{Type: graphql.Int},
			"condition":      &graphql.Field{Type: graphql.String},
			"observed_at":    &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"plan": &graphql.Field{
				Type:        planType,
				Description: "Get a planning session by ID",
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"pace": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: domain.DefaultPaceMinPerKm},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s, err := deps.Planner.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					pace := p.Args["pace"].(float64)
					if pace <= 0 {
						pace = domain.DefaultPaceMinPerKm
					}
					return newPlanView(s, pace), nil
				},
			},
			"savedRoutes": &graphql.Field{
				Type:        graphql.NewList(savedRouteType),
				Description: "List saved routes, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					routes, _, err := deps.Saved.List(p.Context, p.Args["limit"].(int), p.Args["offset"].(int))
					return routes, err
				},
			},
			"savedRoutesNearby": &graphql.Field{
				Type:        graphql.NewList(savedRouteType),
				Description: "Saved routes starting near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 2000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					at := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					if err := at.Validate(); err != nil {
						return nil, err
					}
					return deps.Saved.Nearby(p.Context, at, p.Args["radius"].(float64), p.Args["limit"].(int))
				},
			},
			"savedRoute": &graphql.Field{
				Type:        savedRouteType,
				Description: "Get a saved route by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Saved.Get(p.Context, p.Args["id"].(string))
				},
			},
			"weather": &graphql.Field{
				Type:        weatherType,
				Description: "Current weather at a location",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					at := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					if err := at.Validate(); err != nil {
						return nil, err
					}
					return deps.Weather.Current(p.Context, at)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
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
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(result)
	}
}
