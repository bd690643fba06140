package routes

const (
	Health = "/health"

	Projects       = "/api/v1/projects"
	ProjectByID    = "/api/v1/projects/{id}"
	ProjectFees    = "/api/v1/projects/{id}/fees"
	ProjectUnits   = "/api/v1/projects/{id}/units"
	ProjectRefresh = "/api/v1/projects/{id}/refresh"

	Units          = "/api/v1/units"
	UnitByID       = "/api/v1/units/{id}"
	UnitRecalc     = "/api/v1/units/{id}/recalculate"
	UnitDeposits   = "/api/v1/units/{id}/deposits"
	UnitMortgage   = "/api/v1/units/{id}/mortgage"
	UnitFinancials = "/api/v1/units/{id}/financials"

	UnitSOA              = "/api/v1/units/{id}/soa"
	UnitSOAVersions      = "/api/v1/units/{id}/soa/versions"
	UnitSOAConfirm       = "/api/v1/units/{id}/soa/confirm"
	UnitSOAUnlock        = "/api/v1/units/{id}/soa/unlock"
	UnitSOALawyerBalance = "/api/v1/units/{id}/soa/lawyer-balance"

	UnitShortfall         = "/api/v1/units/{id}/shortfall"
	UnitShortfallVersions = "/api/v1/units/{id}/shortfall/versions"
	UnitShortfallDecision = "/api/v1/units/{id}/shortfall/decision"

	DepositMarkPaid = "/api/v1/deposits/{id}/mark-paid"

	UnitExtensions    = "/api/v1/units/{id}/extensions"
	Extensions        = "/api/v1/extensions"
	ExtensionDecision = "/api/v1/extensions/{id}/decision"
)
