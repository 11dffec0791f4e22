package keyword

// vocabulary is the fixed set of petroleum engineering terms that meter
// usage. Entries are single lowercase words; multi-word phrases from the
// domain glossary (e.g. "natural gas") are represented by their constituent
// tokens, which is also how queries are matched.
var vocabulary = []string{
	// Drilling and wells
	"drilling",
	"drill",
	"wellbore",
	"well",
	"borehole",
	"rig",
	"bit",
	"casing",
	"cementing",
	"tubing",
	"derrick",
	"blowout",
	"horizontal",
	"directional",
	"offshore",
	"onshore",

	// Stimulation and completion
	"fracturing",
	"fracking",
	"hydraulic",
	"proppant",
	"proppants",
	"completion",
	"perforation",
	"stimulation",
	"acidizing",
	"workover",

	// Reservoir and geology
	"reservoir",
	"formation",
	"shale",
	"sandstone",
	"carbonate",
	"permeability",
	"porosity",
	"saturation",
	"pressure",
	"migration",
	"trap",
	"seal",
	"basin",
	"seismic",
	"logging",

	// Fluids and products
	"petroleum",
	"crude",
	"oil",
	"gas",
	"natural",
	"condensate",
	"hydrocarbon",
	"hydrocarbons",
	"methane",
	"bitumen",
	"viscosity",

	// Production and processing
	"production",
	"recovery",
	"injection",
	"flowback",
	"separator",
	"pipeline",
	"refining",
	"refinery",
	"compression",
	"artificial",
	"lift",

	// Unconventional
	"unconventional",
	"tight",
	"coalbed",
}
