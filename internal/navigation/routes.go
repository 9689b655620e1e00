package navigation

// Navigator switches the displayed view given a route path. Controllers
// hold one and never know how navigation is carried out.
type Navigator func(path string)

// Route paths understood by the router.
const (
	RouteLogin     = "/"
	RouteBills     = "#employee/bills"
	RouteNewBill   = "#employee/bill/new"
	RouteDashboard = "#admin/dashboard"
)
