package controllers_fx

import (
	"go.uber.org/fx"

	"stayflo/internal/api"
	"stayflo/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewHealthController),
	fx.Provide(controllers.NewPropertyController),
	fx.Provide(controllers.NewGeocodeController),
	fx.Provide(controllers.NewItineraryController),
	fx.Provide(api.NewRouter))
