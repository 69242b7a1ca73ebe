package report

import (
	"fmt"

	"github.com/MozP1/flam-assignment/curve"
)

// LatexDegrees renders the fitted curve in LaTeX with θ in degrees.
func LatexDegrees(p curve.Params) string {
	th := p.ThetaDeg()
	return fmt.Sprintf(
		`x(t) = t\cos(%.6f^{\circ}) - e^{%.6f|t|}\sin(0.3t)\sin(%.6f^{\circ}) + %.6f,`+"\n"+
			`y(t) = 42 + t\sin(%.6f^{\circ}) + e^{%.6f|t|}\sin(0.3t)\cos(%.6f^{\circ})`,
		th, p.M, th, p.X, th, p.M, th)
}

// LatexRadians renders the fitted curve as one LaTeX parametric pair with θ
// in radians.
func LatexRadians(p curve.Params) string {
	return fmt.Sprintf(
		`\left(t\cos(%.6f) - e^{%.6f\left|t\right|}\sin(0.3t)\sin(%.6f) + %.6f, `+
			`42 + t\sin(%.6f) + e^{%.6f\left|t\right|}\sin(0.3t)\cos(%.6f)\right)`,
		p.Theta, p.M, p.Theta, p.X, p.Theta, p.M, p.Theta)
}

// Plain renders the fitted curve as plain text with θ in radians.
func Plain(p curve.Params) string {
	return fmt.Sprintf(
		"x(t) = t*cos(%.6f) - exp(%.6f*|t|)*sin(0.3*t)*sin(%.6f) + %.6f\n"+
			"y(t) = 42 + t*sin(%.6f) + exp(%.6f*|t|)*sin(0.3*t)*cos(%.6f)",
		p.Theta, p.M, p.Theta, p.X, p.Theta, p.M, p.Theta)
}
