package backend

import (
	"math"
	"strconv"
	"strings"
	"time"

	"froid-storefront/internal/model"
)

// Payload shapes of the catalogue/orders backend. Field names follow the
// backend's JSON contract; conversions to storefront types live here.

type produitDTO struct {
	IDProduit          int64         `json:"idProduit"`
	NomProduit         string        `json:"nomProduit"`
	DescriptionProduit string        `json:"descriptionProduit"`
	RefProduit         string        `json:"refProduit"`
	Prix               float64       `json:"prix"`
	StockDisponible    *int          `json:"stockDisponible"`
	Disponibilite      *bool         `json:"disponibilite"`
	ListeImages        []string      `json:"listeImages"`
	DateAjout          string        `json:"dateAjout"`
	Categorie          *categorieRef `json:"categorie"`
	Marque             *marqueRef    `json:"marque"`
}

type categorieRef struct {
	IDCategorie  int64  `json:"idCategorie"`
	NomCategorie string `json:"nomCategorie"`
}

type marqueRef struct {
	IDMarque  int64  `json:"idMarque"`
	NomMarque string `json:"nomMarque"`
	Logo      string `json:"logo"`
}

type categorieDTO struct {
	IDCategorie          int64  `json:"idCategorie"`
	NomCategorie         string `json:"nomCategorie"`
	DescriptionCategorie string `json:"descriptionCategorie"`
	ImageCategorie       string `json:"imageCategorie"`
	ParentID             *int64 `json:"parentId"`
}

type marqueDTO struct {
	IDMarque    int64  `json:"idMarque"`
	NomMarque   string `json:"nomMarque"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

type pageDTO struct {
	Content       []produitDTO `json:"content"`
	Number        int          `json:"number"`
	Size          int          `json:"size"`
	TotalElements int64        `json:"totalElements"`
	TotalPages    int          `json:"totalPages"`
	Last          bool         `json:"last"`
}

type clientDTO struct {
	IDClient  int64  `json:"idClient"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}

type adresseDTO struct {
	Nom        string `json:"nom"`
	Prenom     string `json:"prenom"`
	Ligne1     string `json:"ligne1"`
	Ligne2     string `json:"ligne2"`
	Ville      string `json:"ville"`
	CodePostal string `json:"codePostal"`
	Telephone  string `json:"telephone"`
}

type ligneDTO struct {
	ProduitID    int64 `json:"produitId"`
	Quantite     int   `json:"quantite"`
	PrixUnitaire int64 `json:"prixUnitaire"`
	SousTotal    int64 `json:"sousTotal"`
}

type paiementDTO struct {
	MethodePaiement string `json:"methodePaiement"`
	Montant         int64  `json:"montant"`
}

type commandeRequest struct {
	ModeLivraison    string       `json:"modeLivraison"`
	Commentaire      string       `json:"commentaire,omitempty"`
	ClientID         *int64       `json:"clientId,omitempty"`
	EmailInvite      string       `json:"emailInvite,omitempty"`
	NomInvite        string       `json:"nomInvite,omitempty"`
	PrenomInvite     string       `json:"prenomInvite,omitempty"`
	TelephoneInvite  string       `json:"telephoneInvite,omitempty"`
	AdresseLivraison adresseDTO   `json:"adresseLivraison"`
	LignesCommande   []ligneDTO   `json:"lignesCommande"`
	Paiement         *paiementDTO `json:"paiement,omitempty"`
}

type commandeResponse struct {
	IDCommande     int64   `json:"idCommande"`
	NumeroCommande string  `json:"numeroCommande"`
	StatutCommande string  `json:"statutCommande"`
	MontantTotal   float64 `json:"montantTotal"`
	DateCommande   string  `json:"dateCommande"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var deliveryModes = map[model.DeliveryMode]string{
	model.DeliveryHome:    "LIVRAISON_DOMICILE",
	model.DeliveryExpress: "LIVRAISON_EXPRESS",
	model.DeliveryPickup:  "RETRAIT_MAGASIN",
}

var paymentMethods = map[model.PaymentMethod]string{
	model.PaymentMobileWalletA:  "WAVE",
	model.PaymentMobileWalletB:  "ORANGE_MONEY",
	model.PaymentCashOnDelivery: "ESPECES",
	model.PaymentBankTransfer:   "VIREMENT_BANCAIRE",
}

// backendTimeLayouts covers LocalDateTime with and without fractions.
var backendTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range backendTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (d produitDTO) toModel() model.Product {
	p := model.Product{
		ID:          d.IDProduit,
		Name:        d.NomProduit,
		Description: d.DescriptionProduit,
		Reference:   d.RefProduit,
		Price:       int64(math.Round(d.Prix)),
		Available:   true,
		Images:      d.ListeImages,
		AddedAt:     parseTime(d.DateAjout),
	}
	if d.StockDisponible != nil {
		p.Stock = *d.StockDisponible
	}
	if d.Disponibilite != nil {
		p.Available = *d.Disponibilite
	}
	if d.Categorie != nil {
		p.Category = &model.CategoryRef{ID: d.Categorie.IDCategorie, Name: d.Categorie.NomCategorie}
	}
	if d.Marque != nil {
		p.Brand = &model.BrandRef{ID: d.Marque.IDMarque, Name: d.Marque.NomMarque, Logo: d.Marque.Logo}
	}
	return p
}

func (d pageDTO) toModel() *model.ProductPage {
	products := make([]model.Product, len(d.Content))
	for i, p := range d.Content {
		products[i] = p.toModel()
	}
	return &model.ProductPage{
		Products:      products,
		Page:          d.Number,
		Size:          d.Size,
		TotalElements: d.TotalElements,
		TotalPages:    d.TotalPages,
		Last:          d.Last,
	}
}

func (d categorieDTO) toModel() model.Category {
	return model.Category{
		ID:          d.IDCategorie,
		Name:        d.NomCategorie,
		Description: d.DescriptionCategorie,
		Image:       d.ImageCategorie,
		ParentID:    d.ParentID,
	}
}

func (d marqueDTO) toModel() model.Brand {
	return model.Brand{
		ID:          d.IDMarque,
		Name:        d.NomMarque,
		Description: d.Description,
		Logo:        d.Logo,
	}
}

func (d clientDTO) toModel() *model.Profile {
	return &model.Profile{
		ID:        d.IDClient,
		FirstName: d.Prenom,
		LastName:  d.Nom,
		Email:     d.Email,
		Phone:     d.Telephone,
	}
}

func (d commandeResponse) toModel() *model.OrderConfirmation {
	return &model.OrderConfirmation{
		OrderID:     d.IDCommande,
		OrderNumber: d.NumeroCommande,
		Status:      d.StatutCommande,
		TotalDue:    int64(math.Round(d.MontantTotal)),
		CreatedAt:   parseTime(d.DateCommande),
	}
}

func newCommandeRequest(draft *model.OrderDraft) commandeRequest {
	lines := make([]ligneDTO, len(draft.Lines))
	for i, l := range draft.Lines {
		lines[i] = ligneDTO{
			ProduitID:    l.ProductID,
			Quantite:     l.Quantity,
			PrixUnitaire: l.UnitPrice,
			SousTotal:    l.LineSubtotal,
		}
	}

	req := commandeRequest{
		ModeLivraison: deliveryModes[draft.DeliveryMode],
		Commentaire:   strings.TrimSpace(draft.Comment),
		AdresseLivraison: adresseDTO{
			Nom:        draft.Address.LastName,
			Prenom:     draft.Address.FirstName,
			Ligne1:     draft.Address.Line1,
			Ligne2:     draft.Address.Line2,
			Ville:      draft.Address.City,
			CodePostal: draft.Address.PostalCode,
			Telephone:  draft.Address.Phone,
		},
		LignesCommande: lines,
	}

	if method, ok := paymentMethods[draft.PaymentMethod]; ok {
		req.Paiement = &paiementDTO{MethodePaiement: method, Montant: draft.TotalDue}
	}

	if draft.Guest != nil {
		req.EmailInvite = draft.Guest.Email
		req.NomInvite = draft.Guest.LastName
		req.PrenomInvite = draft.Guest.FirstName
		req.TelephoneInvite = draft.Guest.Phone
	} else if id, err := strconv.ParseInt(draft.CustomerRef, 10, 64); err == nil {
		req.ClientID = &id
	}

	return req
}
