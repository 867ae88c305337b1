package patcher

// CorrectionTable maps a type name the generator emits with an empty body to
// the body it should have had.
type CorrectionTable map[string]string

// RemiseKey is the table entry used for the inline remise field repairs.
const RemiseKey = "remise"

// Corrections holds the known generator defects for the PI-SPI API description.
var Corrections = CorrectionTable{
	"CompteTransfertIntraRequest": `{
    txId: string;
    montant: number;
    motif?: string;
    payeurNumero?: string;
    payeNumero?: string;
    payeurAlias?: string;
    payeAlias?: string;
}`,
	"WebhookModificationRequest": `{
    callbackUrl?: string;
    alias?: string;
}`,
	RemiseKey: `{ montant?: number; taux?: number; }`,
}
