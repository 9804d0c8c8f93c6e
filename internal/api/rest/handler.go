package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petpad-xyz/launchpad/internal/api/shared/dto"
	"github.com/petpad-xyz/launchpad/internal/domain"
	"github.com/petpad-xyz/launchpad/internal/ledger"
	"github.com/petpad-xyz/launchpad/internal/providers/clanker"
	"github.com/petpad-xyz/launchpad/internal/store"
)

const apiVersion = "1.0.0"

// Handler defines the interface for REST API handlers
type Handler interface {
	// Launch turns a post into a deployed token
	// POST /api/v1/launch
	Launch(c *gin.Context)

	// ListTokens retrieves deployed tokens
	// GET /api/v1/tokens?limit=<limit>&offset=<offset>
	ListTokens(c *gin.Context)

	// ListLaunches retrieves launch history with optional filters
	// GET /api/v1/launches?limit=<limit>&offset=<offset>&petType=<type>&address=<contract_address>
	ListLaunches(c *gin.Context)

	// GetStats retrieves deployment statistics
	// GET /api/v1/stats
	GetStats(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	ledger   *ledger.Ledger
	store    store.Store
	deployer clanker.Deployer
}

// NewHandler creates a new REST API handler
func NewHandler(l *ledger.Ledger, s store.Store, d clanker.Deployer) Handler {
	return &handler{
		ledger:   l,
		store:    s,
		deployer: d,
	}
}

// launchRequest is the body of POST /api/v1/launch
type launchRequest struct {
	MoltbookKey string `json:"moltbook_key"`
	PostID      string `json:"post_id"`
}

// Launch turns a post into a deployed token
func (h *handler) Launch(c *gin.Context) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.MoltbookKey == "" {
		respondBadRequest(c, "moltbook_key required")
		return
	}
	if req.PostID == "" {
		respondBadRequest(c, "post_id required")
		return
	}

	result, err := h.ledger.Launch(c.Request.Context(), req.MoltbookKey, req.PostID)
	if err != nil {
		respondLaunchError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLaunchResponse(result))
}

// ListTokens retrieves deployed tokens
func (h *handler) ListTokens(c *gin.Context) {
	limit, offset := parseListQuery(c)

	launches, total, err := h.store.ListLaunches(c.Request.Context(), store.LaunchFilter{
		DeployedOnly: true,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		respondInternalError(c, err)
		return
	}

	tokens := make([]dto.Token, 0, len(launches))
	for _, launch := range launches {
		tokens = append(tokens, dto.NewToken(launch))
	}

	c.JSON(http.StatusOK, dto.TokenListResponse{
		Success:    true,
		Tokens:     tokens,
		Pagination: dto.NewPagination(limit, offset, len(tokens), total),
	})
}

// ListLaunches retrieves launch history with optional filters.
// Filtering by contract address returns at most one record.
func (h *handler) ListLaunches(c *gin.Context) {
	limit, offset := parseListQuery(c)

	if address := c.Query("address"); address != "" {
		launch, err := h.store.GetLaunchByContract(c.Request.Context(), address)
		if err != nil {
			respondInternalError(c, err)
			return
		}
		launches := make([]dto.Launch, 0, 1)
		if launch != nil {
			launches = append(launches, dto.NewLaunch(launch))
		}
		c.JSON(http.StatusOK, dto.LaunchListResponse{
			Success:    true,
			Launches:   launches,
			Pagination: dto.NewPagination(limit, offset, len(launches), int64(len(launches))),
		})
		return
	}

	filter := store.LaunchFilter{Limit: limit, Offset: offset}
	if petType := c.Query("petType"); petType != "" {
		filter.PetType = domain.PetType(petType)
	}

	results, total, err := h.store.ListLaunches(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	launches := make([]dto.Launch, 0, len(results))
	for _, launch := range results {
		launches = append(launches, dto.NewLaunch(launch))
	}

	c.JSON(http.StatusOK, dto.LaunchListResponse{
		Success:    true,
		Launches:   launches,
		Pagination: dto.NewPagination(limit, offset, len(launches), total),
	})
}

// GetStats retrieves deployment statistics
func (h *handler) GetStats(c *gin.Context) {
	total, err := h.store.CountDeployed(c.Request.Context())
	if err != nil {
		respondInternalError(c, err)
		return
	}

	counts, err := h.store.DeployedCountsByPetType(c.Request.Context())
	if err != nil {
		respondInternalError(c, err)
		return
	}

	petTypes := make([]dto.PetTypeStat, 0, len(counts))
	for _, count := range counts {
		petTypes = append(petTypes, dto.PetTypeStat{
			Type:  string(count.PetType),
			Emoji: count.PetType.Emoji(),
			Count: count.Count,
		})
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		Success:  true,
		Stats:    dto.LaunchTotals{TotalLaunches: total},
		PetTypes: petTypes,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	info, err := h.deployer.Info(c.Request.Context())
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Version: apiVersion,
		Deployer: dto.DeployerStatus{
			Configured: info.Configured,
			Address:    info.Address,
			Balance:    info.Balance,
		},
	})
}
