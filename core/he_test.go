package core

import (
	"testing"

	"github.com/nihei9/psc/ast"
)

func TestHE_Coupling(t *testing.T) {
	t1 := ast.NewCtr("S", ast.NewVar("x"))
	t2 := ast.NewCtr("S", ast.NewCtr("S", ast.NewVar("y")))
	if !HE(t1, t2) {
		t.Error("[S x] should embed into [S [S y]] by coupling")
	}
}

func TestHE_Diving(t *testing.T) {
	t1 := ast.NewCtr("Z")
	t2 := ast.NewCtr("S", ast.NewCtr("Z"))
	if !HE(t1, t2) {
		t.Error("[Z] should embed into [S [Z]] by diving")
	}
}

func TestHE_NoEmbedding(t *testing.T) {
	t1 := ast.NewCtr("S", ast.NewCtr("S", ast.NewVar("x")))
	t2 := ast.NewCtr("S", ast.NewVar("y"))
	if HE(t1, t2) {
		t.Error("[S [S x]] should not embed into [S y]")
	}
}

func TestHE_DifferentFunctor(t *testing.T) {
	t1 := ast.NewCtr("Z")
	t2 := ast.NewFCall("f", ast.NewVar("x"))
	if HE(t1, t2) {
		t.Error("a constructor should not embed into an unrelated call with no matching subterm")
	}
}
