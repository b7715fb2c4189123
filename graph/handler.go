package graph

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"

	"github.com/berkai/picshare/middleware"
	"github.com/berkai/picshare/utils"
)

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler executes GraphQL requests against the schema. The viewer identity
// resolved by the auth middleware is carried on the request context; execution
// errors are reported in the GraphQL response body, always with HTTP 200.
func Handler(schema graphql.Schema) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req graphqlRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"errors": []gin.H{{"message": "invalid request body"}},
			})
			return
		}
		if req.Query == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"errors": []gin.H{{"message": "query is required"}},
			})
			return
		}

		execCtx := WithViewer(ctx.Request.Context(), middleware.ViewerID(ctx))
		execCtx = WithToken(execCtx, middleware.BearerToken(ctx))

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        execCtx,
		})
		if len(result.Errors) > 0 && utils.Sugar != nil {
			utils.Sugar.Debugw("graphql request finished with errors",
				"operation", req.OperationName,
				"errors", result.Errors,
			)
		}

		ctx.JSON(http.StatusOK, result)
	}
}
