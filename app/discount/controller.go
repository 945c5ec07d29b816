package discount

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/km-arc/go-beans/app/member"
	"github.com/km-arc/go-beans/framework/foundation"
	"github.com/km-arc/go-beans/framework/routing"
)

const defaultPrice = 10000

// Controller exposes the policies and the quoter over HTTP.
//
//	GET /api/discounts?price=&grade=         every policy applied to the price
//	GET /api/discounts/{name}?price=&grade=  one policy by bean name
//	GET /api/members/{id}/quote?item=&price= quote with the default policy
type Controller struct {
	foundation.Controller
	policies map[string]Policy
	quoter   *Quoter
}

func NewController(policies map[string]Policy, quoter *Quoter) *Controller {
	return &Controller{policies: policies, quoter: quoter}
}

// Routes mounts the controller.
func (c *Controller) Routes(r *routing.Router) {
	r.Prefix("/api", func(api *routing.Router) {
		api.Get("/discounts", c.Index)
		api.Get("/discounts/{name}", c.Show)
		api.Get("/members/{id}/quote", c.Quote)
	})
}

type applied struct {
	Policy   string `json:"policy"`
	Price    int    `json:"price"`
	Discount int    `json:"discount"`
}

func (c *Controller) Index(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)
	m, price, ok := c.input(w, r)
	if !ok {
		return
	}

	names := make([]string, 0, len(c.policies))
	for name := range c.policies {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]applied, 0, len(names))
	for _, name := range names {
		out = append(out, applied{Policy: name, Price: price, Discount: c.policies[name].Discount(m, price)})
	}
	res.Success(out)
}

func (c *Controller) Show(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)
	name := c.Request(r).RouteParam("name")

	policy, found := c.policies[name]
	if !found {
		res.NotFound("No discount policy named " + strconv.Quote(name) + ".")
		return
	}

	m, price, ok := c.input(w, r)
	if !ok {
		return
	}
	res.Success(applied{Policy: name, Price: price, Discount: policy.Discount(m, price)})
}

func (c *Controller) Quote(w http.ResponseWriter, r *http.Request) {
	req, res := c.Request(r), c.Response(w)

	id, err := strconv.ParseInt(req.RouteParam("id"), 10, 64)
	if err != nil {
		res.Error(http.StatusBadRequest, "member id must be an integer")
		return
	}
	price, err := req.QueryInt("price", defaultPrice)
	if err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}

	q, err := c.quoter.Quote(id, req.Query("item", "item"), price)
	switch {
	case errors.Is(err, member.ErrNotFound):
		res.NotFound(err.Error())
	case err != nil:
		res.Error(http.StatusBadRequest, err.Error())
	default:
		res.Success(q)
	}
}

// input reads ?price= and ?grade= into a transient member, writing a 400
// on bad input.
func (c *Controller) input(w http.ResponseWriter, r *http.Request) (member.Member, int, bool) {
	req, res := c.Request(r), c.Response(w)

	price, err := req.QueryInt("price", defaultPrice)
	if err == nil && price < 0 {
		err = errors.Errorf("negative price %d", price)
	}
	if err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return member.Member{}, 0, false
	}

	grade, err := member.ParseGrade(req.Query("grade", string(member.VIP)))
	if err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return member.Member{}, 0, false
	}
	return member.Member{Grade: grade}, price, true
}
